package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/middleware"
	"github.com/noah-isme/course-hub-api/internal/models"
)

// claimsFromContext returns the authenticated user's claims, or nil when
// the request never passed the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
