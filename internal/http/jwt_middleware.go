package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"employee-review/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el token de operador y guarda los claims en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.Parse(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrJWTExpired) {
				msg = "token expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.OperatorClaims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.OperatorClaims{}, false
	}
	claims, ok := val.(service.OperatorClaims)
	return claims, ok
}
