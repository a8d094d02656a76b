package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/config"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/infrastructure/auth"
	"github.com/you/authsvc/internal/infrastructure/database"
	"github.com/you/authsvc/internal/infrastructure/notifications"
	"github.com/you/authsvc/internal/infrastructure/repositories"
	"github.com/you/authsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB    *gorm.DB
	Redis *database.RedisClient

	UserRepo domain.UserRepository
	OTPRepo  domain.OTPRepository

	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	Verifier    domain.IdentityVerifier
	Notifier    domain.NotificationService
	OTPGen      domain.OTPGenerator
	Throttle    domain.OTPThrottle
	AuthSvc     domain.AuthService
	UserSvc     domain.UserService
	AccessSvc   *services.AccessService

	AuthHandlers *handlers.AuthHandlers
	UserHandlers *handlers.UserHandlers
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	c.DB = db
	c.Redis = database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	c.UserRepo = repositories.NewUserRepository(db)
	c.OTPRepo = repositories.NewOTPRepository(db)

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	c.Verifier = auth.NewGoogleVerifier(auth.GoogleVerifierConfig{ClientID: cfg.GoogleClientID})
	c.Notifier = notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)
	c.OTPGen = services.NewOTPGenerator(c.OTPRepo)
	c.Throttle = services.NewOTPThrottle(c.Redis.Client, cfg.OTPResendWindow)
	c.AccessSvc = services.NewAccessService()

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.OTPRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.Verifier,
		c.Notifier,
		c.OTPGen,
		c.Throttle,
		cfg.OTPEchoCode,
		logger,
	)
	c.UserSvc = services.NewUserService(c.UserRepo, c.PasswordSvc)

	c.AuthHandlers = handlers.NewAuthHandlers(c.AuthSvc)
	c.UserHandlers = handlers.NewUserHandlers(c.UserSvc)

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
