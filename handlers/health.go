package handlers

import (
	"log"
	"net/http"

	"autohive/database"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康檢查，確認資料庫連線正常
func HealthCheck(c *gin.Context) {
	if err := database.Ping(); err != nil {
		log.Printf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "up",
	})
}
