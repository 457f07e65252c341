package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"autodocs/internal/services"
)

// Ключи контекста gin.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// TokenParser — часть services.AuthService, нужная middleware.
type TokenParser interface {
	ParseAccessToken(token string) (*services.Claims, error)
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// 2) читаем Authorization
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		// 3) подпись, срок действия и leeway проверяет AuthService
		claims, err := tokens.ParseAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}

		// 4) прокидываем user/role в контекст
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}
