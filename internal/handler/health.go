package handler

import (
	"context"
	"net/http"
	"time"

	"messpos/internal/infra"
	"messpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The bill counter breaker state and dead-letter counts are informational and
// do not affect the status.
func Health(db *gorm.DB, rdb *redis.Client, counterCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if counterCB != nil {
			body["bill_counter"] = counterCB.State().String()
		}
		if redisStatus == "connected" {
			dlq := gin.H{}
			for _, q := range []string{worker.QueueReceipt, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
			body["dlq"] = dlq
		}
		c.JSON(status, body)
	}
}
