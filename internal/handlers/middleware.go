package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

const adminUsernameKey = "admin_username"

// AdminAuth guards the admin route group with HTTP basic auth checked
// against the stored bcrypt hash. Every failure looks the same to the
// caller.
func AdminAuth(adminService services.AdminService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}

		valid, err := adminService.Verify(c.Request.Context(), username, password)
		if err != nil {
			logger.Error("admin auth check failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
			})
			return
		}
		if !valid {
			unauthorized(c)
			return
		}

		c.Set(adminUsernameKey, username)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: "Unauthorized",
	})
}
