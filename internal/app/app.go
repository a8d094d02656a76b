package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/authsvc/internal/config"
	httpx "github.com/you/authsvc/internal/http"
	"github.com/you/authsvc/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Redis.Ping(context.Background()); err != nil {
		return err
	}

	authMW := middleware.AuthMiddleware(c.TokenSvc)
	r := httpx.BuildRouter(c.AuthHandlers, c.UserHandlers, authMW, c.AccessSvc)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
