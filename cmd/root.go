// Package cmd 定义 watrace 命令行。
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/afumu/watrace/internal/config"
	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/logging"
	"github.com/afumu/watrace/internal/parser"
	"github.com/afumu/watrace/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app 保存命令执行期间共享的状态
type app struct {
	configPath string
	logLevel   string
	workDir    string
	conf       *config.Config
}

// NewRootCmd 创建根命令；不带子命令时等同于 serve
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "watrace",
		Short: "WhatsApp 聊天记录解析与统计",
		Long: `watrace 导入 WhatsApp 导出的聊天记录 (.txt 或 .zip)，
保存到本地 SQLite，并提供活跃度、表情、词频、对话节奏等统计。

不带子命令运行时启动 Web 服务。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", ".env", "配置文件路径")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别，覆盖配置中的 LOG_LEVEL")
	root.PersistentFlags().StringVar(&a.workDir, "work-dir", "", "数据目录，覆盖配置中的 WORK_DIR")

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newStatsCmd(a),
		newChatsCmd(a),
		newClearCmd(a),
	)
	return root
}

// Execute 运行命令行，出错时以非零状态退出
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	conf, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		conf.LogLevel = a.logLevel
	}
	if a.workDir != "" {
		conf.WorkDir = a.workDir
	}
	logging.Init(conf.LogLevel, conf.LogPretty)
	a.conf = conf
	return nil
}

func (a *app) openStore() (store.Store, error) {
	log.Debug().Str("dir", a.conf.WorkDir).Msg("使用工作目录")
	s, err := store.NewStore(a.conf.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("初始化 store 失败: %w", err)
	}
	return s, nil
}

// ingestOptions 由配置得到默认导入选项
func (a *app) ingestOptions() ingest.Options {
	cont := parser.DropContinuation
	if a.conf.JoinContinuations {
		cont = parser.JoinContinuation
	}
	return ingest.Options{
		ReplaceAll: a.conf.ImportReplaceAll,
		Parser:     parser.Options{Continuation: cont, DayFirst: a.conf.DayFirst},
	}
}

func (a *app) ingestService(s store.Store) *ingest.Service {
	return ingest.New(s, importer.New(a.conf.MaxUploadBytes()), a.ingestOptions())
}
