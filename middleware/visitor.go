package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/utils"
)

const (
	// VisitorCookie identifies an anonymous visitor's cart and checkout.
	VisitorCookie = "roamly_visitor"

	ctxVisitorID   = "visitor_id"
	visitorMaxAgeS = 365 * 24 * 60 * 60
)

// VisitorSession makes sure every request has a visitor id, issuing the cookie when missing.
func VisitorSession(secure bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil || !utils.ValidSessionID(id) {
			id, err = utils.GenerateSessionID()
			if err != nil {
				logger.Error("issue visitor id", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VisitorCookie, id, visitorMaxAgeS, "/", "", secure, true)
		}
		c.Set(ctxVisitorID, id)
		c.Next()
	}
}

// VisitorID returns the id set by VisitorSession.
func VisitorID(c *gin.Context) string {
	return c.GetString(ctxVisitorID)
}
