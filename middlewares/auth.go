package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"farmwise/models"
	"farmwise/services"
	"farmwise/utils"
)

const userContextKey = "user"

// TokenAuthMiddleware verifies the bearer/cookie credential on protected
// routes and attaches the resolved user to the request context.
func TokenAuthMiddleware(tokens *services.TokenService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, services.ErrTokenExpired) {
				msg = "token expired"
			}
			utils.RespondError(c, http.StatusUnauthorized, msg)
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "unknown user")
			c.Abort()
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// RequireRole gates a route group on the authenticated user's role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
			c.Abort()
			return
		}
		if user.Role != role {
			utils.RespondError(c, http.StatusForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by TokenAuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// extractToken reads the credential from the Authorization header or, as
// the browser fallback, from the access token cookie.
func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}
