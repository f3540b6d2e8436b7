package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"neuromentor/internal/ai"
	appsvc "neuromentor/internal/app"
	"neuromentor/internal/bootstrap"
	"neuromentor/internal/cache"
	"neuromentor/internal/platform/rabbitmq"
	"neuromentor/internal/repository"
	"neuromentor/internal/transport/http/docs"
	"neuromentor/internal/transport/http/handler"
	"neuromentor/internal/transport/http/middleware"
)

type Services struct {
	Users    *appsvc.UserService
	Sessions *appsvc.SessionService
	Chat     *appsvc.ChatService
	Admin    *appsvc.AdminService
}

// NewRouter wires the DeepSeek client and the services on top of app.
func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	client, err := ai.NewClient(ai.ChatConfig{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		MaxContext: cfg.LLM.MaxContextMessage,
		Timeout:    cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return NewEngine(app, BuildServices(app, client))
}

func BuildServices(app *bootstrap.App, responder appsvc.Responder) Services {
	cfg := app.Config
	userRepo := repository.NewUserRepository(app.DB)
	sessionRepo := repository.NewSessionRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)
	usageRepo := repository.NewUsageLogRepository(app.DB)

	var historyCache appsvc.HistoryCache
	if app.Redis != nil {
		historyCache = cache.NewHistoryCache(
			app.Redis,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
	}

	var usage appsvc.UsageRecorder = usageRepo
	if app.MQConn != nil {
		usage = rabbitmq.NewUsagePublisher(app.MQConn, cfg.RabbitMQ.UsageQueue)
	}

	chatDeps := appsvc.ChatDependencies{
		Users:        userRepo,
		Sessions:     sessionRepo,
		Messages:     messageRepo,
		AIRequests:   repository.NewAIRequestRepository(app.DB),
		Responder:    responder,
		HistoryCache: historyCache,
		Usage:        usage,
		HistoryLimit: cfg.Chat.HistoryLimit,
	}
	if app.Logger != nil {
		chatDeps.Logger = app.Logger.Logger
	}

	subscriptionRepo := repository.NewSubscriptionRepository(app.DB)

	return Services{
		Users:    appsvc.NewUserService(userRepo, subscriptionRepo),
		Sessions: appsvc.NewSessionService(userRepo, sessionRepo, messageRepo),
		Chat:     appsvc.NewChatService(chatDeps),
		Admin: appsvc.NewAdminService(
			userRepo,
			repository.NewAdminRepository(app.DB),
			subscriptionRepo,
			usageRepo,
			cfg.Auth.JWTSecret,
			cfg.JWTExpiration(),
		),
	}
}

func NewEngine(app *bootstrap.App, services Services) (*gin.Engine, error) {
	cfg := app.Config
	base := cfg.App.BasePath

	var accessLog io.Writer = gin.DefaultWriter
	if app.Logger != nil {
		accessLog = app.Logger.Writer
	}

	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.LoggerWithWriter(accessLog), gin.Recovery())

	docsHandler, err := docs.New(docs.Options{
		APIName:    cfg.App.Name,
		Version:    "1.0.0",
		BasePath:   base,
		MainSite:   cfg.App.MainSite,
		StaticDir:  cfg.App.StaticDir,
		Favicon:    cfg.App.Favicon,
		RedocJS:    cfg.App.RedocJS,
		SwaggerJS:  cfg.App.SwaggerJS,
		SwaggerCSS: cfg.App.SwaggerCSS,
	})
	if err != nil {
		return nil, err
	}

	metaHandler := handler.NewMetaHandler(cfg.App.Name, base)
	healthHandler := handler.NewHealthHandler(app)
	userHandler := handler.NewUserHandler(services.Users)
	chatHandler := handler.NewChatHandler(services.Chat)
	sessionHandler := handler.NewSessionHandler(services.Sessions)
	adminHandler := handler.NewAdminHandler(services.Admin)

	router.GET("/", metaHandler.Welcome)
	router.GET(base+"/", metaHandler.Welcome)
	router.GET("/healthz", healthHandler.Check)

	router.GET(docsHandler.OpenAPIPath(), docsHandler.OpenAPI)
	router.GET(docsHandler.SwaggerPath(), docsHandler.Swagger)
	router.GET(docsHandler.RedocPath(), docsHandler.Redoc)
	router.GET(docsHandler.OAuth2Path(), docsHandler.OAuth2Redirect)
	router.Static(base+"/"+cfg.App.StaticDir, cfg.App.StaticDir)

	versioned := base + "/v1"
	router.GET(versioned+"/docs", redirect(docsHandler.SwaggerPath()))
	router.GET(versioned+"/redoc", redirect(docsHandler.RedocPath()))
	router.GET(versioned+"/openapi.json", redirect(docsHandler.OpenAPIPath()))

	for _, prefix := range []string{base, base + "/latest", versioned} {
		api := router.Group(prefix)
		api.GET("", metaHandler.VersionRoot)
		api.POST("/user", userHandler.Register)
		api.GET("/user/:id", userHandler.Get)
		api.POST("/chat", chatHandler.Chat)
		api.POST("/session", sessionHandler.Create)
		api.GET("/session/:id/messages", sessionHandler.Messages)

		admin := api.Group("/admin")
		admin.POST("/login", adminHandler.Login)
		protected := admin.Group("", middleware.AuthJWT(cfg.Auth.JWTSecret))
		protected.GET("/users/:id", adminHandler.UserDetail)
		protected.GET("/sessions/:id/messages", sessionHandler.AdminMessages)
	}

	return router, nil
}

func redirect(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, target)
	}
}
