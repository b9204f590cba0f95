package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
	"github.com/yungbote/typecast-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier services.IdentityVerifier
}

func NewAuthMiddleware(log *logger.Logger, verifier services.IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), verifier: verifier}
}

// OptionalAuth attaches the caller's identity when a valid token is present.
// A malformed or expired token is rejected rather than silently ignored.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || am.verifier == nil || !am.verifier.Enabled() {
			c.Next()
			return
		}
		if !am.attach(c, tokenString) {
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || am.verifier == nil || !am.verifier.Enabled() {
			response.RespondError(c, http.StatusUnauthorized, string(apierr.CodeUnauthorized), errors.New("missing or invalid token"))
			c.Abort()
			return
		}
		if !am.attach(c, tokenString) {
			return
		}
		if ctxutil.Identity(c.Request.Context()) == "" {
			response.RespondError(c, http.StatusForbidden, string(apierr.CodeForbidden), errors.New("forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) attach(c *gin.Context, tokenString string) bool {
	ctx, err := am.verifier.SetContextFromToken(c.Request.Context(), tokenString)
	if err != nil {
		am.log.Debug("token rejected", "error", err)
		response.RespondError(c, http.StatusUnauthorized, string(apierr.CodeUnauthorized), err)
		c.Abort()
		return false
	}
	c.Request = c.Request.WithContext(ctx)
	return true
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
