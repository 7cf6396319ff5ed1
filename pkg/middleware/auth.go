package middleware

import (
	"net/http"
	"strings"

	"crm-copilot/backend/internal/auth"
	apperrors "crm-copilot/backend/pkg/errors"
	"crm-copilot/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the authenticated identity.
const IdentityKey = "identity"

// Authenticate returns middleware that verifies the request's bearer
// token and attaches the resolved identity to the context.
func Authenticate(verifier *auth.Verifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			appErr, ok := err.(*apperrors.AppError)
			if !ok {
				appErr = apperrors.NewUnauthenticatedError("Unauthorized")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom extracts the authenticated identity set by Authenticate.
func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	value, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok
}
