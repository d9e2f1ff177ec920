package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
	"github.com/noah-isme/degree-registry-api/pkg/response"
)

type tokenIssuer interface {
	IssueDevToken(ctx context.Context, req models.DevTokenRequest) (*models.DevTokenResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service tokenIssuer
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc tokenIssuer) *AuthHandler {
	return &AuthHandler{service: svc}
}

// DevToken godoc
// @Summary Issue development token
// @Description Mint an access token for any principal. Only mounted outside production.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.DevTokenRequest true "Token payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/dev-token [post]
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req models.DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}

	res, err := h.service.IssueDevToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
