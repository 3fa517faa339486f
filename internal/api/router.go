package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/election-map-backend-go/internal/config"
	"github.com/jengzang/election-map-backend-go/internal/handler"
	"github.com/jengzang/election-map-backend-go/internal/logging"
	"github.com/jengzang/election-map-backend-go/internal/middleware"
	"github.com/jengzang/election-map-backend-go/internal/service"
)

// Deps 路由依赖
type Deps struct {
	MapService *service.MapService
	Logger     logging.Logger
	Registry   *prometheus.Registry
}

// SetupRouter 设置路由，返回的 stop 用于在关闭时释放限流器
func SetupRouter(cfg *config.Config, deps Deps) (*gin.Engine, func(), error) {
	gin.SetMode(cfg.Server.Mode)
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requestMetrics, err := middleware.NewRequestMetrics(reg)
	if err != nil {
		return nil, nil, err
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 && cfg.Server.RateWindow > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log.Named("http"), "/health", "/metrics"))
	r.Use(requestMetrics.Handler())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Election map API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	mapHandler := handler.NewMapHandler(deps.MapService, log.Named("map"))

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/parties", mapHandler.GetParties)
		api.GET("/dataset", mapHandler.GetDatasetInfo)

		// 地图渲染接口
		m := api.Group("/map")
		{
			m.GET("/features", mapHandler.GetFeatures)
			m.GET("/scale", mapHandler.GetScale)
			m.GET("/summary", mapHandler.GetSummary)
			m.GET("/legend", mapHandler.GetLegend)
			m.GET("/labels", mapHandler.GetLabels)
		}

		// 管理接口，未配置密钥时不注册
		if cfg.AdminEnabled() {
			admin := api.Group("/admin")
			admin.Use(middleware.JWTAuth(cfg.Auth.JWTSecret, log.Named("auth")))
			{
				admin.POST("/reload", mapHandler.Reload)
			}
		}
	}

	return r, limiter.Stop, nil
}
