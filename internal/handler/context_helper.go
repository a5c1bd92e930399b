package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// ownerFromContext names the plan owner for new plans; empty when auth is off.
func ownerFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// actorFromContext is the user whose ownership is checked on mutations. Admins and
// unauthenticated deployments act on any plan.
func actorFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role == models.RoleAdmin {
		return ""
	}
	return claims.UserID
}

func respondWithMeta(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	response.JSON(c, status, data, pagination, middleware.ExtractMeta(c))
}
