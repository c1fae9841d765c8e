package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andikarw/resto-order-api/models"
	"github.com/andikarw/resto-order-api/utils"
)

// RoleResolver derives the caller's role from group membership on every
// request. Must run after AuthMiddleware.
func RoleResolver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDInterface, exists := c.Get("user_id")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}

		userID, ok := userIDInterface.(uint)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id type"))
			c.Abort()
			return
		}

		role, err := models.ResolveRole(db, userID)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown user"))
			c.Abort()
			return
		}

		c.Set("role", role)
		c.Next()
	}
}

// RequireCustomer gates endpoints reserved for plain customers: users in the
// Manager or Delivery Crew group have no cart and may not check out.
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}

		if role != models.RoleCustomer {
			utils.RespondError(c, http.StatusForbidden, errors.New("customer access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
