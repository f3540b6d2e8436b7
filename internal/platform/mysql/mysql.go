package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EnsureDatabase connects without selecting a schema and creates the schema
// named in dsn when it does not exist yet. The binary collation keeps string
// equality exact, so user profiles differing only by case stay distinct.
func EnsureDatabase(ctx context.Context, dsn string) error {
	cfg, err := drivermysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse mysql dsn failed: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return fmt.Errorf("mysql dsn has no database name")
	}
	cfg.DBName = ""

	connector, err := drivermysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("build mysql connector failed: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	execCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", QuoteIdentifier(name))
	if _, err := db.ExecContext(execCtx, stmt); err != nil {
		return fmt.Errorf("create database %s failed: %w", name, err)
	}
	return nil
}

func New(ctx context.Context, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get mysql sql db failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping mysql failed: %w", err)
	}

	return db, nil
}

// QuoteIdentifier backtick-quotes a schema name for use in DDL.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
