// Package middleware 提供 web 层的 gin 中间件。
package middleware

import (
	"strings"

	"github.com/afumu/watrace/internal/config"
	"github.com/afumu/watrace/web/api"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
)

// publicPaths 开启密码保护后仍可访问的接口
var publicPaths = []string{
	"/api/v1/system/password/status",
	"/api/v1/system/password/verify",
	"/health",
}

// AuthMiddleware 密码保护中间件，只拦截 /api/ 下的接口
func AuthMiddleware(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.PasswordHash() == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}
		for _, p := range publicPaths {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		if !a.Password.IsValidSession(api.SessionToken(c)) {
			transport.Unauthorized(c, "请先验证密码")
			return
		}
		c.Next()
	}
}
