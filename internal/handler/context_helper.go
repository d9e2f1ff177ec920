package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-registry-api/internal/middleware"
	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
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

// callerFromContext returns the authenticated principal, or the empty
// principal which the registry rejects as not authorized.
func callerFromContext(c *gin.Context) models.Principal {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Principal()
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}
