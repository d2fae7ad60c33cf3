package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	ctxEmail = "email"
	ctxRole  = "role"
)

var errNoToken = errors.New("authorization header missing")

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, secret)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, errNoToken) {
				msg = "Authorization header missing"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth records the caller's claims when a valid token is sent and
// otherwise lets the request through anonymously.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, secret); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ctxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}
		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether an earlier auth middleware accepted an admin token.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == RoleAdmin
}

func bearerClaims(c *gin.Context, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errNoToken
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		return nil, errors.New("bearer token malformed")
	}

	token, err := jwt.Parse(strings.TrimSpace(raw), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if email, ok := claims["email"].(string); ok {
		c.Set(ctxEmail, email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(ctxRole, role)
	}
}
