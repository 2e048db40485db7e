package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type AdminLoginRequest struct {
	Secret string `json:"secret" binding:"required"`
}

type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}
