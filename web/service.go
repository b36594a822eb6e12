// Package web 提供 HTTP 接口与前端静态文件服务。
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/store"
	"github.com/afumu/watrace/web/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Service 定义了 web 服务。
type Service struct {
	router   *gin.Engine
	server   *http.Server
	conf     *Config
	api      *api.API
	staticFS fs.FS
}

// Config 保存 web 服务的配置。
type Config struct {
	ListenAddr     string
	StaticDir      string // 前端构建产物目录，为空时不提供 UI
	MaxUploadBytes int64
}

// NewService 创建一个新的 web 服务。
func NewService(s store.Store, in *ingest.Service, ws *workspace.Machine, conf *Config) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	var staticFS fs.FS
	if conf.StaticDir != "" {
		if info, err := os.Stat(conf.StaticDir); err == nil && info.IsDir() {
			staticFS = os.DirFS(conf.StaticDir)
		} else {
			log.Warn().Str("dir", conf.StaticDir).Msg("静态文件目录不存在，不提供 UI")
		}
	}

	svc := &Service{
		router:   router,
		conf:     conf,
		api:      api.NewAPI(s, in, ws, &api.Config{MaxUploadBytes: conf.MaxUploadBytes}),
		staticFS: staticFS,
	}

	svc.setupMiddleware()
	svc.setupRoutes()

	return svc
}

// Start 开始提供 web 应用服务。
func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:              s.conf.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Msg(fmt.Sprintf("在 %s 上启动 web 服务", s.conf.ListenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Web 服务启动失败")
		}
	}()

	return nil
}

// Stop 优雅地关闭 web 服务器。
func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("优雅关闭 web 服务器失败")
		return err
	}

	log.Info().Msg("Web 服务已停止")
	return nil
}

// GetRouter 返回 gin 引擎，测试中直接配合 httptest 使用
func (s *Service) GetRouter() *gin.Engine {
	return s.router
}

// API 返回处理器
func (s *Service) API() *api.API {
	return s.api
}
