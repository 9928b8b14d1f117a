package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
	"erp-assistant-backend/services"
	"erp-assistant-backend/utils"
)

func SetupAskRoutes(router *gin.Engine, assistant *services.Assistant) {
	router.POST("/ask", func(c *gin.Context) {
		var req models.AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		response, err := assistant.Ask(c.Request.Context(), req.Question)
		if err != nil {
			// Connectivity-class failure: terminal for this question
			logger.Error("Question pipeline failed", "question", req.Question, "error", err)
			utils.RespondWithError(c, http.StatusBadGateway, "pipeline_failure",
				"L'assistant est momentanément indisponible, réessayez dans un instant.", nil)
			return
		}

		c.JSON(http.StatusOK, response)
	})
}
