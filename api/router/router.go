package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samiya782/SecureCrtScript/api/handler"
	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/internal/service"
	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, probeService *service.ProbeService) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())

	probeHandler := handler.NewProbeHandler(cfg, probeService)

	// 根路径
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "Route Probe",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", probeHandler.Health)

		probe := v1.Group("/probe")
		{
			probe.POST("/batch", probeHandler.BatchProbe)
			probe.GET("/task/:task_id", probeHandler.GetTask)
			probe.GET("/task/:task_id/results", probeHandler.GetTaskResults)
		}
	}

	// 404处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("%d", time.Now().UnixNano())
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Infof("HTTP %s %s status=%d duration=%s request_id=%s client=%s",
			c.Request.Method, c.Request.URL.Path, statusCode, duration,
			c.GetString("request_id"), c.ClientIP())

		if statusCode >= 400 {
			logger.Errorf("HTTP error %s %s status=%d", c.Request.Method, c.Request.URL.Path, statusCode)
		}
	}
}
