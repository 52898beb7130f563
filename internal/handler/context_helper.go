package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/middleware"
	"github.com/noah-isme/grc-api/internal/models"
)

// currentClaims extracts the verified JWT claims set by the auth middleware.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// currentActor extracts the resolved actor set by the actor middleware.
func currentActor(c *gin.Context) (*models.Actor, bool) {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.Actor)
	return actor, ok
}
