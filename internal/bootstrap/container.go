package bootstrap

import (
	"context"
	"log"

	"ai-mediation-be/internal/config"
	"ai-mediation-be/internal/constant"
	"ai-mediation-be/internal/controller"
	"ai-mediation-be/internal/pkg/logger"
	"ai-mediation-be/internal/pkg/mailer"
	"ai-mediation-be/internal/repository/memory"
	"ai-mediation-be/internal/repository/unitofwork"
	"ai-mediation-be/internal/service"
	"ai-mediation-be/internal/websocket"
	"ai-mediation-be/pkg/gateway"
	"ai-mediation-be/pkg/llm/factory"

	pktNats "ai-mediation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	ChatController    controller.IChatController
	HandoffController controller.IHandoffController
	ReportController  controller.IReportController

	// Background Services (Exposed for main.go to run)
	FeedService service.IFeedService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Gateway
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	mediator := gateway.NewMediator(llmProvider)

	// In-memory code -> session id cache
	codeCache := memory.NewCodeCache()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(constant.MessageCreatedTopic, pubSub)
	feedService := service.NewFeedService(pubSub, constant.MessageCreatedTopic, wsHub)

	sessionService := service.NewSessionService(
		uowFactory,
		codeCache,
		emailService,
		natsPub,
		sysLogger,
		cfg.Session.CodeLength,
	)
	chatService := service.NewChatService(uowFactory, mediator, publisherService)
	handoffService := service.NewHandoffService(uowFactory, mediator, natsPub)
	reportService := service.NewReportService(uowFactory, mediator, natsPub)

	// Audit worker consuming the lifecycle events off the bus.
	auditService := service.NewAuditService(natsSub, sysLogger)
	if natsSub != nil {
		go auditService.Start()
	}

	// 5. Controllers
	return &Container{
		WebSocketHub:      wsHub,
		SessionController: controller.NewSessionController(sessionService),
		ChatController:    controller.NewChatController(chatService),
		HandoffController: controller.NewHandoffController(handoffService),
		ReportController:  controller.NewReportController(reportService),

		FeedService: feedService,
	}
}
