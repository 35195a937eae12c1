package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/config"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/core"
)

// NewServer builds the HTTP server: the chat websocket, the read-only
// history endpoint, the admin page and operational routes.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))
	router.GET("/api/history", historyHandler(hub))

	admin := router.Group("/admin")
	admin.GET("", adminPageHandler(cfg.AdminPasswordHash))
	admin.POST("/auth", adminAuthHandler(cfg.AdminPasswordHash))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
