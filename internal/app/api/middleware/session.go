package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/shulefund/payments/internal/platform/backend"
)

// SessionClaims are the donor identity fields carried by the session token.
// They enrich logs and donation metadata; authorization happens at the
// backend, so the token is not verified here.
type SessionClaims struct {
	Subject string
	Email   string
	Name    string
}

const sessionClaimsKey = "sessionClaims"

// SessionMiddleware forwards the caller's bearer token to backend calls made
// within this request and extracts identity claims when the token is a JWT.
// A missing token still flows through; the backend receives an empty bearer.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))

		ctx := backend.WithBearer(c.Request.Context(), raw)
		c.Request = c.Request.WithContext(ctx)

		if claims := parseClaims(raw); claims != nil {
			c.Set(sessionClaimsKey, claims)
		}
		c.Next()
	}
}

func parseClaims(raw string) *SessionClaims {
	if raw == "" {
		return nil
	}
	token, _, err := new(jwt.Parser).ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	claims := &SessionClaims{}
	if sub, ok := mc["sub"].(string); ok {
		claims.Subject = sub
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mc["name"].(string); ok {
		claims.Name = name
	}
	return claims
}

// ClaimsFromGin returns the session claims attached by SessionMiddleware, if any.
func ClaimsFromGin(c *gin.Context) *SessionClaims {
	v, ok := c.Get(sessionClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*SessionClaims)
	return claims
}
