package cmd

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/afumu/watrace/internal/inbox"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 Web 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	log.Info().Str("dir", a.conf.WorkDir).Msg("Store 初始化成功")

	ws := workspace.NewMachine()
	in := a.ingestService(s)

	webService := web.NewService(s, in, ws, &web.Config{
		ListenAddr:     a.conf.Addr(),
		StaticDir:      a.conf.StaticDir,
		MaxUploadBytes: a.conf.MaxUploadBytes(),
	})

	// 收件目录：放入的导出文件会被自动导入并选中
	if a.conf.InboxDir != "" {
		box, err := inbox.New(filepath.Clean(a.conf.InboxDir), inbox.DefaultSettle, in, in.Defaults())
		if err != nil {
			return err
		}
		box.OnImported = func(path string, res *model.ImportResult, err error) {
			if err != nil {
				return
			}
			ws.Apply(func(st workspace.State) (workspace.State, error) {
				return workspace.SelectChat(st, res.Chat.ID)
			})
		}
		box.Start()
		defer box.Stop()
	}

	if err := webService.Start(); err != nil {
		return err
	}

	// 打印访问地址并自动打开浏览器
	baseURL := a.conf.Addr()
	if len(baseURL) > 0 && baseURL[0] == ':' {
		baseURL = "127.0.0.1" + baseURL
	}
	url := "http://" + baseURL
	log.Info().Str("url", url).Msg("服务已启动")
	if a.conf.OpenBrowser {
		openBrowser(url)
	}

	// 等待中断信号以实现优雅关闭
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("接收到关闭信号，正在关闭服务...")

	if err := webService.Stop(); err != nil {
		return err
	}
	log.Info().Msg("服务已成功关闭")
	return nil
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	}
	if err != nil {
		log.Warn().Err(err).Msg("无法自动打开浏览器")
	}
}
