package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"progressboard/dto"
)

func HealthController(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "OK", Message: "Server is running"})
	})
}
