package di

import (
	"crm-copilot/backend/internal/ai"
	"crm-copilot/backend/internal/auth"
	"crm-copilot/backend/internal/chat"
	"crm-copilot/backend/internal/crm"
	"crm-copilot/backend/internal/ws"
	"crm-copilot/backend/pkg/config"
	"crm-copilot/backend/pkg/jwt"
	"crm-copilot/backend/pkg/logger"
	"crm-copilot/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB          *gorm.DB
	Logger      *logger.Logger
	Redis       *redis.Client
	JWTService  *jwt.Service
	Verifier    *auth.Verifier
	ChatService *chat.Service
	Assembler   *ai.Assembler
	Gateway     *ai.Gateway
	Recorder    *crm.ActivityRecorder
	Hub         *ws.Hub
	WSHandler   *ws.Handler
}

// New wires the application graph from configuration
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) *Container {
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)
	redisClient := redis.NewClient()

	verifier := auth.NewVerifier(
		jwtService,
		auth.NewGormUserRepository(db),
		redisClient,
		cfg.Redis.CacheTTL,
		log,
	)

	chatService := chat.NewService(
		chat.NewGormConversationRepository(db),
		chat.NewGormMessageRepository(db),
		chat.ServiceConfig{
			HistoryPageSize: cfg.Chat.HistoryPageSize,
			HistoryPageMax:  cfg.Chat.HistoryPageMax,
		},
	)

	activityStore := crm.NewGormActivityStore(db)
	recorder := crm.NewActivityRecorder(activityStore, log)

	assembler := ai.NewAssembler(
		crm.NewGormUserStore(db),
		crm.NewGormContactStore(db),
		activityStore,
		chatService,
		cfg.Chat.ActivityLimit,
	)

	gateway := ai.NewGateway(ai.GatewayConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}, log)

	hub := ws.NewHub(chatService, assembler, gateway, log)
	wsHandler := ws.NewHandler(hub, verifier, recorder, log, ws.HandlerConfig{
		MaxMessageSize: cfg.Chat.MaxMessageSize,
		SendBuffer:     cfg.Chat.SendChannelBuffer,
	})

	return &Container{
		DB:          db,
		Logger:      log,
		Redis:       redisClient,
		JWTService:  jwtService,
		Verifier:    verifier,
		ChatService: chatService,
		Assembler:   assembler,
		Gateway:     gateway,
		Recorder:    recorder,
		Hub:         hub,
		WSHandler:   wsHandler,
	}
}
