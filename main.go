package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/milanhq/milan/config"
	"github.com/milanhq/milan/internal/consumer"
	"github.com/milanhq/milan/internal/handler"
	"github.com/milanhq/milan/internal/middleware"
	"github.com/milanhq/milan/internal/notifier"
	"github.com/milanhq/milan/internal/payment"
	"github.com/milanhq/milan/internal/repository"
	"github.com/milanhq/milan/internal/service"
	"github.com/milanhq/milan/pkg/database"
	"github.com/milanhq/milan/pkg/rabbitmq"
	"github.com/milanhq/milan/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	cronLogRepo := repository.NewCronLogRepository(db)

	notify := buildNotifier(cfg, logger)

	gateway := payment.NewHTTPGateway(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret)

	eventSvc := service.NewEventService(eventRepo, profileRepo, cfg.ReviewWindowDays, cfg.DailySubmissionLimit, logger)
	reviewSvc := service.NewReviewService(eventRepo, logger)
	regSvc := service.NewRegistrationService(regRepo, eventRepo, notify, logger)
	paySvc := service.NewPaymentService(regRepo, eventRepo, gateway, notify, cfg.PaymentKeySecret, cfg.PaymentWebhookSecret, logger)
	sweepSvc := service.NewSweepService(eventRepo, cronLogRepo, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "milan"})
	})

	public := e.Group("/api/v1")
	authed := e.Group("/api/v1", middleware.ProfileAuth(profileRepo))
	admin := e.Group("/api/v1/admin", middleware.ProfileAuth(profileRepo), middleware.RequireAdmin)
	cron := e.Group("/api/v1/cron", middleware.CronAuth(cfg.CronSecret))

	handler.NewEventHandler(eventSvc).RegisterRoutes(public, authed)
	handler.NewRegistrationHandler(regSvc).RegisterRoutes(public, authed)
	handler.NewPaymentHandler(paySvc).RegisterRoutes(public)
	handler.NewAdminHandler(reviewSvc, eventSvc, sweepSvc).RegisterRoutes(admin)
	handler.NewCronHandler(sweepSvc).RegisterRoutes(cron)

	logger.Info("milan starting", zap.String("port", cfg.ServerPort))
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildNotifier wires the RabbitMQ notification bus when configured and
// falls back to a no-op locally. The in-process email consumer starts only
// when an SMTP relay is configured too.
func buildNotifier(cfg *config.Config, logger *zap.Logger) notifier.Notifier {
	if cfg.RabbitURL == "" {
		logger.Warn("RABBITMQ_URL not set, confirmation emails disabled")
		return notifier.Nop{}
	}

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbitmq connect failed", zap.Error(err))
	}

	if cfg.SMTPConfigured() {
		cons, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			logger.Fatal("rabbitmq consumer failed", zap.Error(err))
		}
		msgs, err := cons.Consume()
		if err != nil {
			logger.Fatal("rabbitmq consume failed", zap.Error(err))
		}
		consumer.NewEmailConsumer(consumer.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}, logger).Start(msgs)
	} else {
		logger.Warn("SMTP not configured, notifications will queue without a consumer")
	}

	return notifier.NewAMQPNotifier(pub, logger)
}
