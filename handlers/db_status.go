package handlers

import (
	"call-analysis-api/utils"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleDBStatus reports whether the archive database answers a ping within two seconds.
// It always returns 200 so the dashboard can show the state.
func HandleDBStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.DB == nil {
			c.JSON(http.StatusOK, gin.H{"connected": false, "error": "database not initialized"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err := utils.DB.PingContext(ctx)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"connected": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"connected": true})
	}
}
