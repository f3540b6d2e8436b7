package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neuromentor/internal/config"
	"neuromentor/internal/logging"
	"neuromentor/internal/model"
	mysqlClient "neuromentor/internal/platform/mysql"
	rabbitmqClient "neuromentor/internal/platform/rabbitmq"
	redisClient "neuromentor/internal/platform/redis"
	"neuromentor/internal/repository"
	"neuromentor/internal/worker"
)

// App holds the process-wide resources. Redis and RabbitMQ are optional and
// stay nil when not configured.
type App struct {
	Config      *config.Config
	Logger      *logging.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	UsageWorker *worker.UsageWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appLogger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging failed: %w", err)
	}

	app := &App{Config: cfg, Logger: appLogger, StartedAt: time.Now()}
	if err := app.connect(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config
	dsn := cfg.MySQLDSN()
	if err := mysqlClient.EnsureDatabase(ctx, dsn); err != nil {
		return err
	}

	gormLevel := logger.Warn
	if cfg.App.Dev {
		gormLevel = logger.Info
	}
	db, err := mysqlClient.New(ctx, dsn, gormLevel)
	if err != nil {
		return err
	}
	a.DB = db
	if err := Migrate(db); err != nil {
		return err
	}

	a.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if a.Redis == nil {
		a.Logger.Info("redis not configured, history cache disabled")
	}

	a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name)
	if err != nil {
		return err
	}
	if a.MQConn == nil {
		a.Logger.Info("rabbitmq not configured, usage recorded synchronously")
		return nil
	}

	usageRepo := repository.NewUsageLogRepository(db)
	a.UsageWorker = worker.NewUsageWorker(a.MQConn, usageRepo, cfg.RabbitMQ.UsageQueue, a.Logger.Logger)
	if err := a.UsageWorker.Start(ctx); err != nil {
		return fmt.Errorf("start usage worker failed: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.UsageWorker != nil {
		a.UsageWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			slog.Warn("close log file failed", "error", err)
		}
	}
	return closeErr
}
