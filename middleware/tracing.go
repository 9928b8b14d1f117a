package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// TracingMiddleware provides OpenTelemetry tracing for Gin. Each request
// gets a root span that the downstream Gemini spans attach to.
func TracingMiddleware() gin.HandlerFunc {
	return otelgin.Middleware("erp-assistant-api")
}
