package bootstrap

import (
	"context"
	"log"

	"ai-examgen-be/internal/config"
	"ai-examgen-be/internal/controller"
	"ai-examgen-be/internal/handler"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/pkg/mailer"
	"ai-examgen-be/internal/repository/memory"
	"ai-examgen-be/internal/repository/slotstore"
	"ai-examgen-be/internal/repository/unitofwork"
	"ai-examgen-be/internal/service"
	"ai-examgen-be/internal/websocket"
	"ai-examgen-be/pkg/extract"
	"ai-examgen-be/pkg/genai"
	"ai-examgen-be/pkg/kvstore"
	"ai-examgen-be/pkg/llm/factory"
	"ai-examgen-be/pkg/progress"

	pktNats "ai-examgen-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController
	ArchiveController    controller.IArchiveController
	LogController        controller.ILogController

	// Background Services (Exposed for main.go to run)
	ConsumerService   service.IConsumerService
	GenerationService service.IGenerationService

	// WebSockets & Session Events
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
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

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 2.5 Infrastructure (Moved up for dependency injection)
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
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Artifact Storage based on Config, always bounded by the quota decorator
	var slotBackend kvstore.KeyValueStore
	switch cfg.Storage.Backend {
	case "redis":
		slotBackend = kvstore.NewRedisStore(rdb)
		log.Printf("[INFO] Using Storage Backend: REDIS")
	case "postgres":
		if db == nil {
			log.Fatalf("[FATAL] Storage backend 'postgres' requires DB_CONNECTION_STRING")
		}
		uowFactory := unitofwork.NewRepositoryFactory(db)
		slotBackend = slotstore.NewGormSlotStore(uowFactory)
		log.Printf("[INFO] Using Storage Backend: POSTGRES")
	default:
		slotBackend = kvstore.NewFileStore(cfg.Storage.FilePath)
		log.Printf("[INFO] Using Storage Backend: FILE (%s)", cfg.Storage.FilePath)
	}
	slotStore := kvstore.NewQuotaStore(slotBackend, int64(cfg.Storage.QuotaBytes))

	// Extraction Pipeline
	extractor := extract.NewDocumentExtractor(
		extract.NewTabulaSource(),
		extract.NewFitzRenderer(float64(cfg.Extract.RenderDPI)),
		sysLogger,
	)

	// Generation Capability
	generator := genai.NewLLMGenerator(llmProvider, sysLogger)
	tracker := progress.NewTracker(progress.DefaultTickInterval)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Keys.GenerationTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.GenerationTopic,
		emailService,
		natsPub,
		sysLogger,
	)

	extractionService := service.NewExtractionService(extractor, sessionRepo, sysLogger)
	generationService := service.NewGenerationService(
		sessionRepo,
		generator,
		tracker,
		wsHub, // Hub implements NotificationDelivery
		publisherService,
		sysLogger,
	)
	archiveService := service.NewArchiveService(
		slotStore,
		sessionRepo,
		emailService,
		natsPub,
		sysLogger,
	)
	logService := service.NewLogService(sysLogger)

	// 3.5 Notification Bridge (NATS events -> websocket delivery)
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	// 4. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,

		DocumentController:   controller.NewDocumentController(extractionService),
		GenerationController: controller.NewGenerationController(generationService, extractionService),
		ArchiveController:    controller.NewArchiveController(archiveService),
		LogController:        controller.NewLogController(logService),

		ConsumerService:   consumerService,
		GenerationService: generationService,
	}
}
