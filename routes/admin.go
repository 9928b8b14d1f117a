package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/internal/queue"
	"erp-assistant-backend/utils"
)

// SetupAdminRoutes exposes the operational surface: triggering a reindex of
// the documentation. The actual work runs in the worker process.
func SetupAdminRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc, queueClient *asynq.Client) {
	admin := router.Group("/admin")
	admin.Use(authMiddleware)

	admin.POST("/reindex", func(c *gin.Context) {
		task, err := queue.NewReindexTask("admin-api")
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "task_creation_failed",
				"Could not create reindex task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			logger.Error("Failed to enqueue reindex", "error", err)
			utils.RespondWithError(c, http.StatusServiceUnavailable, "enqueue_failed",
				"Could not schedule reindex, is the queue running?", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"task_id": info.ID,
			"queue":   info.Queue,
			"state":   info.State.String(),
		})
	})
}
