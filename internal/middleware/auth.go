package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/therapy-scheduler/pkg/auth"
	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
	"github.com/jwalitptl/therapy-scheduler/pkg/httputil"
)

const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores its subject and role on
// the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, unauthorized("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.RespondWithError(c, unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func unauthorized(message string) *apperrors.AppError {
	return &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: message}
}
