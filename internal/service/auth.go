package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"network/internal/config"
)

// AuthService issues the signed access tokens the HTTP layer validates.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// GenerateAccessToken signs an HS256 token carrying the user's id.
func (s *AuthService) GenerateAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// TokenMaxAge returns the access token lifetime in seconds, for cookies.
func (s *AuthService) TokenMaxAge() int {
	return s.config.AccessTokenMaxAge
}
