package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-system/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Tests PrincipalMiddleware
func TestPrincipalMiddleware(t *testing.T) {
	resolver := identity.NewStatic(map[string]string{"token-alice": "alice"})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(PrincipalMiddleware(resolver))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := c.Get(identity.PrincipalKey)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"principal": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	})

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no_header_passes_through",
			authorization:  "",
			expectedStatus: http.StatusOK,
			expectedBody:   `"principal":null`,
		},
		{
			name:           "valid_bearer_credential",
			authorization:  "Bearer token-alice",
			expectedStatus: http.StatusOK,
			expectedBody:   `"principal":"alice"`,
		},
		{
			name:           "bare_credential_without_scheme",
			authorization:  "token-alice",
			expectedStatus: http.StatusOK,
			expectedBody:   `"principal":"alice"`,
		},
		{
			name:           "unknown_credential_rejected",
			authorization:  "Bearer nope",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid credential",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, w.Body.String(), tc.expectedBody)
		})
	}
}
