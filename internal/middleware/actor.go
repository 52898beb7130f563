package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/internal/service"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/response"
)

// ContextActorKey stores the resolved actor on the gin context.
const ContextActorKey = "currentActor"

// Actor resolves the authenticated claims into a full actor (profile,
// department headship, cell membership) once per request.
func Actor(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		actor, err := identity.Resolve(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextActorKey, actor)
		c.Next()
	}
}
