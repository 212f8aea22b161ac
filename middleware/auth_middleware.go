package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/utils"
)

const (
	// AdminCookie carries the admin session token.
	AdminCookie = "jwt_token"

	ctxAdminClaims = "admin_claims"
)

// TokenValidator verifies admin session tokens.
type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

// OptionalAdmin attaches admin claims when a valid token is present and lets every request through.
func OptionalAdmin(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := adminClaims(c, tokens); ok {
			c.Set(ctxAdminClaims, claims)
		}
		c.Next()
	}
}

// AdminRequired rejects requests without a valid admin token.
func AdminRequired(tokens TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}
		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			logger.Info("rejected admin token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}
		c.Set(ctxAdminClaims, claims)
		c.Next()
	}
}

// Admin returns the claims set by OptionalAdmin or AdminRequired.
func Admin(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ctxAdminClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// IsAdmin reports whether the request carries a verified admin session.
func IsAdmin(c *gin.Context) bool {
	_, ok := Admin(c)
	return ok
}

func adminClaims(c *gin.Context, tokens TokenValidator) (*utils.Claims, bool) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return nil, false
	}
	claims, err := tokens.ValidateJWT(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(AdminCookie); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
