package handlers

import (
	"errors"
	"net/http"

	"rya_attendance_backend/middleware"
	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	secret       *middleware.SecretAuthorizer
	tokenService *middleware.TokenService
	logger       *zap.Logger
}

func NewAuthHandler(secret *middleware.SecretAuthorizer, tokenService *middleware.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		secret:       secret,
		tokenService: tokenService,
		logger:       logger,
	}
}

// AdminLogin trades the shared admin secret for a short-lived admin token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	if len(h.tokenService.JWTSecret) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin tokens are disabled"})
		return
	}

	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.secret.Authorize(c.Request.Context(), req.Secret); err != nil {
		if errors.Is(err, store.ErrAuthorizationDenied) {
			h.logger.Warn("failed admin login", zap.String("client_ip", c.ClientIP()))
		}
		writeError(c, err)
		return
	}

	token, expiresAt, err := h.tokenService.GenerateToken()
	if err != nil {
		h.logger.Error("error generating admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.AdminLoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
	})
}
