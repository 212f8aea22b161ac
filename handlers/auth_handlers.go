package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"roamly/api/middleware"
	"roamly/api/models"
	"roamly/api/store"
	"roamly/api/utils"
)

type AuthHandlers struct {
	Admins       AdminRepository
	Tokens       *utils.TokenIssuer
	CookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandlers(admins AdminRepository, tokens *utils.TokenIssuer, cookieSecure bool, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{Admins: admins, Tokens: tokens, CookieSecure: cookieSecure, logger: logger}
}

// Login checks the credentials and issues the admin session cookie. Failures
// return the same message whether the email or the password was wrong.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	admin, err := h.Admins.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("admin lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
			return
		}
		h.logger.Info("login failed: unknown admin", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(admin.HashedPassword, []byte(req.Password)); err != nil {
		h.logger.Info("login failed: password mismatch", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.Tokens.GenerateJWT(admin)
	if err != nil {
		h.logger.Error("issue admin token", zap.Int("admin_id", admin.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AdminCookie, tokenString, int(h.Tokens.TTL().Seconds()), "/", "", h.CookieSecure, true)

	h.logger.Info("admin signed in", zap.Int("admin_id", admin.ID))
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"admin_email": admin.Email,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AdminCookie, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Session reports whether the request carries a valid admin session.
func (h *AuthHandlers) Session(c *gin.Context) {
	claims, ok := middleware.Admin(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"admin_email":   claims.Email,
		"expires_at":    claims.ExpiresAt.Time,
	})
}
