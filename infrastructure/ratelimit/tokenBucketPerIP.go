package ratelimit

import (
	"encoding/json"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
)

const defaultRequestsPerSecond = 25

// TokenBucketPerIP limits each client IP to requestsPerSecond. Values below 1
// use the default of 25.
func TokenBucketPerIP(requestsPerSecond int) gin.HandlerFunc {
	if requestsPerSecond < 1 {
		requestsPerSecond = defaultRequestsPerSecond
	}
	message := map[string]any{
		"message": "You are going too fast! You have been ratelimited.",
	}
	jsonMessage, _ := json.Marshal(message)

	tlbthLimiter := tollbooth.NewLimiter(float64(requestsPerSecond), &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Minute * 1,
	})
	tlbthLimiter.SetMessageContentType("application/json")
	tlbthLimiter.SetMessage(string(jsonMessage))

	return tollbooth_gin.LimitHandler(tlbthLimiter)
}
