package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mes-platform/production-service/pkg/logging"
)

// Identity headers. X-Employee-ID accepts either the internal employee ID
// or the human-readable badge code; resolution happens in the application
// layer.
const (
	HeaderEmployeeID = "X-Employee-ID"

	ContextKeyEmployeeID = "employeeId"
)

// IdentityConfig holds configuration for the employee identity middleware
type IdentityConfig struct {
	// Required rejects requests without an employee header when true
	Required bool
}

// EmployeeIdentity extracts the acting employee from request headers and
// adds it to both the Gin and the Go contexts.
func EmployeeIdentity(config *IdentityConfig) gin.HandlerFunc {
	if config == nil {
		config = &IdentityConfig{}
	}

	return func(c *gin.Context) {
		employeeID := c.GetHeader(HeaderEmployeeID)

		if employeeID == "" && config.Required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "MISSING_EMPLOYEE_IDENTITY",
				"message": "X-Employee-ID header is required",
			})
			return
		}

		if employeeID != "" {
			c.Set(ContextKeyEmployeeID, employeeID)
			ctx := logging.ContextWithEmployeeID(c.Request.Context(), employeeID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// RequireEmployee ensures an employee identity is present. Use this on
// endpoints that act on behalf of a specific worker.
func RequireEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetEmployeeID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "MISSING_EMPLOYEE_IDENTITY",
				"message": "Employee identity is required for this endpoint",
			})
			return
		}
		c.Next()
	}
}

// GetEmployeeID retrieves the acting employee reference from the Gin context
func GetEmployeeID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyEmployeeID); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
