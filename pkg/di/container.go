package di

import (
	"context"
	"time"

	"gorm.io/gorm"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/mood"
	"virtual-therapy-demo/backend/internal/service"
	"virtual-therapy-demo/backend/pkg/cache"
	"virtual-therapy-demo/backend/pkg/config"
	"virtual-therapy-demo/backend/pkg/jwt"
	"virtual-therapy-demo/backend/pkg/logger"
	"virtual-therapy-demo/backend/pkg/secrets"
	"virtual-therapy-demo/backend/shared/redis"
)

// Container holds all the dependencies for the application
type Container struct {
	DB     *gorm.DB
	Logger *logger.Logger

	JWTService      *jwt.Service
	UserService     *service.UserService
	SessionService  *service.SessionService
	MessageService  *service.MessageService
	SettingsService *service.SettingsService
	AudioService    *service.AudioService

	AIService  *ai.Service
	Classifier *mood.Classifier

	// Redis is nil when the in-memory clip store is in use.
	Redis *redis.Client
}

// Config holds the configuration for the container
type Config struct {
	LoggerConfig       logger.Config
	JWTSecret          string
	JWTExpiry          time.Duration
	AudioServiceConfig service.AudioServiceConfig
	UseRedis           bool
}

// DefaultConfig returns a container configuration derived from the
// application config.
func DefaultConfig() *Config {
	cfg := config.Get()
	return &Config{
		LoggerConfig: logger.Config{
			Level: cfg.Logging.Level,
			JSON:  cfg.Logging.Format == "json",
		},
		JWTSecret: cfg.JWT.Secret,
		JWTExpiry: cfg.JWT.ExpiryHours,
		AudioServiceConfig: service.AudioServiceConfig{
			DefaultTTL: cfg.Audio.ClipTTL,
		},
		UseRedis: true,
	}
}

// New creates a new dependency injection container
func New(db *gorm.DB, containerCfg *Config) (*Container, error) {
	if containerCfg == nil {
		containerCfg = DefaultConfig()
	}

	log := logger.New(containerCfg.LoggerConfig)
	appCfg := config.Get()

	jwtService := jwt.NewService(containerCfg.JWTSecret, containerCfg.JWTExpiry)

	// Provider keys come from Vault when it is configured and fall back to
	// the environment otherwise.
	aiCfg := ai.Config{
		OpenAIKey:       appCfg.AI.OpenAIKey,
		OpenAIBaseURL:   appCfg.AI.OpenAIBaseURL,
		DeepSeekKey:     appCfg.AI.DeepSeekKey,
		DeepSeekBaseURL: appCfg.AI.DeepSeekBaseURL,
		LocalModelURL:   appCfg.AI.LocalModelURL,
		Timeout:         appCfg.AI.Timeout,
	}
	if err := secrets.Init(log); err != nil {
		log.Warn("Vault unavailable, using environment provider keys", "error", err.Error())
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		aiCfg.OpenAIKey = secrets.GetSecretWithDefault(ctx, "OPENAI_API_KEY", aiCfg.OpenAIKey)
		aiCfg.DeepSeekKey = secrets.GetSecretWithDefault(ctx, "DEEPSEEK_API_KEY", aiCfg.DeepSeekKey)
	}

	// Clip bytes prefer Redis so they survive restarts and expire on their
	// own. The in-memory cache is the development fallback.
	var redisClient *redis.Client
	var clipStore service.ClipStore
	if containerCfg.UseRedis {
		client := redis.NewClient()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn("Redis unreachable, clips held in memory", "error", err.Error())
		} else {
			redisClient = client
			clipStore = client
		}
	}
	if clipStore == nil {
		clipStore = cache.NewClipStore(cache.NewCache())
	}

	return &Container{
		DB:              db,
		Logger:          log,
		JWTService:      jwtService,
		UserService:     service.NewUserService(db),
		SessionService:  service.NewSessionService(db),
		MessageService:  service.NewMessageService(db),
		SettingsService: service.NewSettingsService(db),
		AudioService:    service.NewAudioService(db, clipStore, containerCfg.AudioServiceConfig),
		AIService:       ai.NewService(aiCfg, log),
		Classifier:      mood.NewClassifier(),
		Redis:           redisClient,
	}, nil
}
