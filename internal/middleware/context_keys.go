package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// operatorIDKey is the key used to store the acting operator's ID.
const operatorIDKey = contextKey("operatorID")

// OperatorHeader carries the staff operator performing a request.
const OperatorHeader = "X-Operator-ID"

// OperatorIdentity requires the X-Operator-ID header on mutating requests and
// stores its value in the Gin and request contexts. The operator is resolved
// against the party directory by the services, not here.
func OperatorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := c.GetHeader(OperatorHeader)
		if operatorID == "" {
			if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
				c.Next()
				return
			}
			GetLoggerFromCtx(c.Request.Context()).Warn("Missing operator header")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": OperatorHeader + " header is required"})
			return
		}

		c.Set(string(operatorIDKey), operatorID)
		ctx := context.WithValue(c.Request.Context(), operatorIDKey, operatorID)
		ctx = WithLogger(ctx, GetLoggerFromCtx(ctx).With(slog.String("operator_id", operatorID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetOperatorIDFromContext retrieves the operator ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	operatorIDVal, exists := c.Get(string(operatorIDKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(operatorIDKey).(string); ok && v != "" {
			return v, true
		}
		return "", false
	}

	operatorID, ok := operatorIDVal.(string)
	if !ok || operatorID == "" {
		return "", false
	}
	return operatorID, true
}
