package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestLogger はリクエストごとに ID を振ってアクセスログを出す
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("requestID", id)

		c.Next()

		zap.L().Info("request",
			zap.String("requestID", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

const defaultAllowOrigin = "http://localhost:3000"

func NewRouter(h *Handler, allowOrigins []string) *gin.Engine {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{defaultAllowOrigin}
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Object-Key", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/documents", h.GetDocumentsGin)
	router.GET("/reports", h.GetStoredReportsGin)
	router.GET("/reports/:docID", h.GetReportGin)
	router.POST("/reports", h.PostReportGin)
	return router
}

// Router はサーバーを起動する
func Router(h *Handler, addr string, allowOrigins []string) error {
	return NewRouter(h, allowOrigins).Run(addr)
}
