package core

import (
	"context"
	"net/http"
	"time"

	"github.com/devanderson/media-gallery/api/common"
	handlerGallery "github.com/devanderson/media-gallery/api/handler/gallery"
	"github.com/devanderson/media-gallery/api/middleware"
	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/internal/di"
	"github.com/devanderson/media-gallery/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// 启动gin
func setupRouter(container *di.Container) (*gin.Engine, func()) {
	cfg := container.GetConfig()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	maxUploadMB := cfg.VideoMaxSizeMB
	if cfg.ImageMaxSizeMB > maxUploadMB {
		maxUploadMB = cfg.ImageMaxSizeMB
	}
	router.MaxMultipartMemory = int64(maxUploadMB) << 20

	// 速率限制
	uploadRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitUploadRPS, cfg.RateLimitUploadBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAPIRPS, cfg.RateLimitAPIBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		uploadRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(container),
				"storage":  checkStorageHealth(container),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, health)
	})
	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 本地存储直接由服务进程对外提供文件
	if local, ok := container.GetStorageFactory().GetDefault().(*storage.LocalStorage); ok {
		router.Static("/storage", local.BasePath())
	}

	galleryHandler := handlerGallery.NewHandler(
		cfg,
		container.GetStagingStore(),
		container.GetFieldResolver(),
		container.GetUploadService(),
		container.GetEditService(),
		container.GetDeleteService(),
		container.GetPager(),
		container.GetQueryService(),
	)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		galleryGroup := apiGroup.Group("/gallery")
		{
			uploadGroup := galleryGroup.Group("")
			uploadGroup.Use(uploadRateLimiter.Middleware())
			{
				uploadGroup.POST("/upload", galleryHandler.UploadMedia) // POST /api/gallery/upload
				uploadGroup.POST("/edit", galleryHandler.EditMedia)     // POST /api/gallery/edit
			}

			readGroup := galleryGroup.Group("")
			readGroup.Use(apiRateLimiter.Middleware())
			{
				readGroup.GET("/media", galleryHandler.ListMedia)            // GET /api/gallery/media
				readGroup.GET("/selection", galleryHandler.ResolveSelection) // GET /api/gallery/selection
				readGroup.DELETE("/media/:id", galleryHandler.DeleteMedia)   // DELETE /api/gallery/media/{id}
			}
		}
	}

	return router, cleanup
}

// checkDatabaseHealth 数据库健康检查
func checkDatabaseHealth(container *di.Container) string {
	factory := container.GetDatabaseFactory()
	if factory == nil {
		return "unavailable"
	}
	if err := factory.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// checkStorageHealth 存储健康检查
func checkStorageHealth(container *di.Container) string {
	factory := container.GetStorageFactory()
	if factory == nil {
		return "unavailable"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := factory.GetDefault().Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// StartServer 创建 http.Server
func StartServer(container *di.Container) (*http.Server, func()) {
	cfg := container.GetConfig()
	router, clean := setupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
