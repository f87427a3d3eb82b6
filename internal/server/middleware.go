package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auction-system/internal/identity"
	"auction-system/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// PrincipalMiddleware resolves a bearer credential to an account id and
// stores it in the context. Requests without an Authorization header pass
// through unresolved; a credential that resolves to nothing is rejected.
func PrincipalMiddleware(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		credential := strings.TrimPrefix(header, "Bearer ")
		accountID, err := resolver.Resolve(credential)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid credential")
			c.Abort()
			return
		}
		c.Set(identity.PrincipalKey, accountID)
		c.Next()
	}
}
