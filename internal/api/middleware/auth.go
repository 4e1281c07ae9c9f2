package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/admVeloHub/front-console-sub000/internal/permission"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
	"github.com/admVeloHub/front-console-sub000/pkg/response"
)

// 上下文键
const (
	ctxUserID      = "user_id"
	ctxClaims      = "claims"
	ctxPermissions = "permissions"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "cabeçalho de autenticação ausente")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 10002, "cabeçalho de autenticação inválido")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			msg := "token inválido"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expirado"
			}
			response.Unauthorized(c, 10002, msg)
			c.Abort()
			return
		}

		// 将用户信息注入上下文；权限只认 Token 中登记过的键
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)
		c.Set(ctxPermissions, permission.FromTrusted(claims.Permissions))

		c.Next()
	}
}

// RequirePermission 权限中间件
// 要求当前用户同时具备全部指定权限，不存在任何身份特例
func RequirePermission(keys ...permission.Key) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ctxPermissions)
		if !exists {
			response.Unauthorized(c, 10002, "não autenticado")
			c.Abort()
			return
		}

		set, ok := v.(permission.Set)
		if !ok || !set.HasAll(keys...) {
			response.Forbidden(c, 10003, "sem permissão para acessar este recurso")
			c.Abort()
			return
		}

		c.Next()
	}
}
