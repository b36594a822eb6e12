// Package inbox 监听收件目录，把放入的聊天导出自动导入。
package inbox

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/core"
	"github.com/rs/zerolog/log"
)

// DefaultSettle 文件写入静默多久后开始导入
const DefaultSettle = 2 * time.Second

// Importer 导入本地文件
type Importer interface {
	ImportFile(ctx context.Context, path string, opts ingest.Options) (*model.ImportResult, error)
}

// Inbox 收件目录
type Inbox struct {
	dir      string
	watcher  *core.Watcher
	importer Importer
	opts     ingest.Options
	ctx      context.Context
	cancel   context.CancelFunc

	// OnImported 每次导入结束后回调，err 非空表示失败
	OnImported func(path string, res *model.ImportResult, err error)
}

// New 创建收件目录监听，目录不存在时自动创建
func New(dir string, settle time.Duration, im Importer, opts ingest.Options) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	w, err := core.NewWatcher(dir, settle)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := &Inbox{
		dir:      dir,
		watcher:  w,
		importer: im,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
	w.AddCallback(in.handle)
	return in, nil
}

// Start 开始监听
func (in *Inbox) Start() {
	in.watcher.Start()
	log.Info().Str("dir", in.dir).Msg("收件目录监听已启动")
}

// Stop 停止监听
func (in *Inbox) Stop() error {
	in.cancel()
	return in.watcher.Stop()
}

func (in *Inbox) handle(path string) {
	if importer.Identify(path) == importer.Unknown {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	res, err := in.importer.ImportFile(in.ctx, path, in.opts)
	if err != nil {
		log.Error().Err(err).Str("file", filepath.Base(path)).Msg("自动导入失败")
	} else {
		log.Info().Str("file", filepath.Base(path)).Int64("chat", res.Chat.ID).Int("parsed", res.Parsed).Msg("自动导入完成")
	}
	if in.OnImported != nil {
		in.OnImported(path, res, err)
	}
}
