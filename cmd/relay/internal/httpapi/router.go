package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type counter interface {
	Count() int
}

type sizer interface {
	Len() int
}

type RouterConfig struct {
	Handler       *Handler
	Sessions      counter
	Store         sizer
	Gatherer      prometheus.Gatherer
	WebSocket     http.Handler
	AllowedOrigin string
	Logger        *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(Logging(cfg.Logger), Recovery(cfg.Logger), CORS(cfg.AllowedOrigin))

	cfg.Handler.RegisterRoutes(r.Group("/api"))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": cfg.Sessions.Count(),
			"quotes":   cfg.Store.Len(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	if cfg.WebSocket != nil {
		r.GET("/ws", gin.WrapH(cfg.WebSocket))
	}
	return r
}
