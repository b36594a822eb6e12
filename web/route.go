package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
)

// setupRoutes 初始化所有应用程序路由。
func (s *Service) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		// 系统路由
		system := v1.Group("/system")
		{
			system.GET("/status", s.api.GetSystemStatus)
			system.GET("/password/status", s.api.GetPasswordStatus)
			system.POST("/password/set", s.api.SetPassword)
			system.POST("/password/verify", s.api.VerifyPassword)
			system.POST("/password/disable", s.api.DisablePassword)
		}

		// 工作区
		v1.GET("/workspace", s.api.GetWorkspace)
		v1.POST("/workspace/chat", s.api.SelectChat)
		v1.POST("/workspace/year", s.api.SelectYear)

		// 会话与消息
		chats := v1.Group("/chats")
		{
			chats.POST("/import", s.api.ImportChat)
			chats.GET("", s.api.GetChats)
			chats.GET("/:id", s.api.GetChat)
			chats.DELETE("/:id", s.api.DeleteChat)
			chats.POST("/:id/reparse", s.api.ReparseChat)
			chats.GET("/:id/persons", s.api.GetPersons)
			chats.GET("/:id/years", s.api.GetYears)
			chats.GET("/:id/messages", s.api.GetMessages)
		}
		v1.DELETE("/data", s.api.ClearData)

		// 统计与导出
		v1.GET("/analysis/:id/:section", s.api.GetAnalysis)
		v1.GET("/export/:id", s.api.ExportChat)
	}

	// 健康检查
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(s.fallback)
}

// fallback 未匹配的 API 返回 404；其余路径交给前端 (SPA)
func (s *Service) fallback(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") || s.staticFS == nil {
		transport.NotFound(c, "API route not found")
		return
	}

	// 先尝试直接返回文件 (例如 favicon.ico)
	name := strings.TrimPrefix(c.Request.URL.Path, "/")
	if name != "" {
		if file, err := s.staticFS.Open(name); err == nil {
			stat, err := file.Stat()
			file.Close()
			if err == nil && !stat.IsDir() {
				http.FileServer(http.FS(s.staticFS)).ServeHTTP(c.Writer, c.Request)
				return
			}
		}
	}

	f, err := s.staticFS.Open("index.html")
	if err != nil {
		c.String(http.StatusNotFound, "UI not found")
		return
	}
	defer f.Close()
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html")
	_, _ = io.Copy(c.Writer, f)
}
