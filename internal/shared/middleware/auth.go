package middleware

import (
	"fmt"
	"strings"

	"bookquote-backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware verifies the bearer JWT and puts tenant_id (and user_id,
// when present) into the gin context. Every catalog and import operation is
// scoped by tenant_id downstream; a token without it is rejected.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := parts[1]

		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})

		if err != nil || !parsedToken.Valid {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		tenantIDStr, ok := claims[shared.CtxTenantID].(string)
		if !ok {
			c.JSON(401, gin.H{"error": "missing tenant ID in token"})
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid tenant ID in token"})
			c.Abort()
			return
		}

		c.Set(shared.CtxTenantID, tenantID)

		if userIDStr, ok := claims[shared.CtxUserID].(string); ok {
			if userID, err := uuid.Parse(userIDStr); err == nil {
				c.Set(shared.CtxUserID, userID)
			}
		}

		c.Next()
	}
}

// TenantFromContext pulls the tenant UUID the auth middleware stored.
func TenantFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(shared.CtxTenantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
