package middlewares

import (
	"net/http"
	"strings"

	"creme-store/apperrors"
	"creme-store/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID  = "userID"
	ContextEmail   = "userEmail"
	ContextIsAdmin = "isAdmin"
)

// AuthMiddleware requires a valid bearer token and puts the caller's identity in the
// gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated, "Please sign in to continue.")
			return
		}

		claims, err := utils.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated, "Your session has expired. Please sign in again.")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.Admin)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			abort(c, http.StatusForbidden, apperrors.ErrForbidden, "Administrator access is required.")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, err error, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.Code(err), "message": message})
}
