package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"esfilter/internal/models/dto"
)

const currentUserKey = "currentUser"

// ErrNoSecret is returned when tokens are requested without a configured key
var ErrNoSecret = errors.New("JWT secret is not configured")

// GenerateJWT signs an HS256 token for subject valid for ttl
func GenerateJWT(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken parses token and checks its HMAC signature
func VerifyToken(secret, token string) (*jwt.Token, error) {
	tokenVerify, err := jwt.Parse(token, func(newToken *jwt.Token) (interface{}, error) {
		if _, isValid := newToken.Method.(*jwt.SigningMethodHMAC); !isValid {
			return nil, fmt.Errorf("unexpected signing method: %v", newToken.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return tokenVerify, nil
}

// DecodeTokenJWT returns the claims of a valid token
func DecodeTokenJWT(secret, token string) (jwt.MapClaims, error) {
	tokenVerify, err := VerifyToken(secret, token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	claims, isOk := tokenVerify.Claims.(jwt.MapClaims)
	if isOk && tokenVerify.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Auth rejects requests without a valid bearer token signed with secret.
// An empty secret rejects everything.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Authentication is not configured"))
			return
		}

		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "JWT token not provided"))
			return
		}

		parts := strings.Split(token, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Invalid Authorization header format"))
			return
		}

		claims, err := DecodeTokenJWT(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Invalid token"))
			return
		}

		c.Set(currentUserKey, claims)
		c.Next()
	}
}

// CurrentUser returns the claims stored by Auth
func CurrentUser(c *gin.Context) (jwt.MapClaims, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.MapClaims)
	return claims, ok
}
