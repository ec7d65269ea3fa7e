package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AnalyzeRateLimit throttles manual analysis triggers. One burst, then one
// token per interval; detection batches are expensive upstream calls and the
// dashboard already rejects overlapping runs, so a tight limit is enough.
func AnalyzeRateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(r, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "analysis rate limit exceeded, retry shortly",
			})
			return
		}
		c.Next()
	}
}
