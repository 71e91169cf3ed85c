package utils

import (
	"errors"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/gorillago3318/portal/internal/models"
)

// Claims represents the JWT claims for an authenticated agent
type Claims struct {
	AgentID uuid.UUID        `json:"agent_id"`
	Role    models.AgentRole `json:"role"`
	Phone   string           `json:"phone"`
	jwt.StandardClaims
}

// getJWTSecret returns the JWT secret from environment variable or a default for development
func getJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Default secret for development only
		return "portal_development_jwt_secret_key"
	}
	return secret
}

// GenerateToken creates a signed token for an agent
func GenerateToken(agentID uuid.UUID, role models.AgentRole, phone string, expiration time.Duration) (string, error) {
	claims := Claims{
		AgentID: agentID,
		Role:    role,
		Phone:   phone,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(expiration).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(getJWTSecret()))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(getJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}

	return claims, nil
}
