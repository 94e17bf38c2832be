package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"finops-copilot-be/internal/config"
	"finops-copilot-be/internal/controller"
	"finops-copilot-be/internal/pkg/logger"
	"finops-copilot-be/internal/repository/memory"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/internal/service"
	"finops-copilot-be/internal/websocket"
	"finops-copilot-be/pkg/ai/analyzer"
	"finops-copilot-be/pkg/ai/continuity"
	"finops-copilot-be/pkg/ai/gate"
	"finops-copilot-be/pkg/llm/factory"
	"finops-copilot-be/pkg/storage"

	pktNats "finops-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const threadTitleTopic = "thread_title_generate"

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	FileController   controller.IFileController
	AiToolController controller.IAiToolController
	AgentController  controller.IAgentController

	// Background Services (Exposed for main.go to run)
	TitlerService service.ITitlerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI capabilities
	classifier, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.ClassifierModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize classifier provider: %v", err)
	}
	generator, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.GenerationModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize generation provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (classifier=%s, generator=%s)",
		cfg.Ai.Provider, cfg.Ai.ClassifierModel, cfg.Ai.GenerationModel)

	aiLogger := initAiLogger()
	relevanceGate := gate.NewRelevanceGate(classifier, aiLogger)
	costAnalyzer := analyzer.NewCostAnalyzer(generator, cfg.Ai.SystemPrompt, cfg.Ai.Temperature, cfg.Ai.MaxTokens, aiLogger)
	engine := continuity.NewEngine(relevanceGate, costAnalyzer, aiLogger)

	// Upload tracker and blob storage
	tracker := memory.NewUploadTracker()
	blobs, err := storage.NewLocalBlobStore(cfg.Storage.UploadDir, cfg.App.BaseURL+"/uploads")
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob store: %v", err)
	}

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
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	chatService := service.NewChatService(
		uowFactory,
		engine,
		costAnalyzer,
		generator,
		blobs,
		natsPub,
		pubSub,
		threadTitleTopic,
		sysLogger,
	)
	fileService := service.NewFileService(uowFactory, blobs, tracker, sysLogger)
	titlerService := service.NewTitlerService(pubSub, threadTitleTopic, uowFactory, generator)

	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	// 5. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		FileController:   controller.NewFileController(fileService),
		AiToolController: controller.NewAiToolController(chatService),
		AgentController:  controller.NewAgentController(wsHub),

		TitlerService: titlerService,
		WebSocketHub:  wsHub,
	}
}

// initAiLogger writes the gate/engine trace to its own file so prompt noise
// stays out of the main log.
func initAiLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
