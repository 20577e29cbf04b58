package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/souschef-app/backend/internal/middleware"
)

// IdentityService validates session tokens issued by the external identity
// provider. Sign-up, sign-in and session refresh all live with the
// provider; this service only recovers the stable user identifier from a
// bearer token.
type IdentityService struct {
	jwtSecret string
}

// NewIdentityService creates a new IdentityService instance
func NewIdentityService(jwtSecret string) *IdentityService {
	return &IdentityService{jwtSecret: jwtSecret}
}

// ValidateToken verifies the token signature and extracts the user ID claim
func (s *IdentityService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return nil, errors.New("invalid token claims")
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, err
		}

		return &middleware.TokenClaims{
			UserID: userID,
		}, nil
	}

	return nil, errors.New("invalid token")
}
