// Package ingest 串起导入流程：读取文件、解析、分配参与者编号并写入存储。
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/internal/parser"
	"github.com/afumu/watrace/internal/participant"
	"github.com/afumu/watrace/store"
	"github.com/afumu/watrace/store/types"
	"github.com/rs/zerolog/log"
)

// ErrNoMessages 文件中没有任何可识别的消息
var ErrNoMessages = errors.New("文件中没有可识别的聊天消息")

// Options 单次导入的选项
type Options struct {
	ReplaceAll bool
	Parser     parser.Options
}

// Service 导入服务
type Service struct {
	store    store.Store
	importer *importer.Importer
	defaults Options
}

// New 创建导入服务，defaults 为未显式指定时使用的选项
func New(s store.Store, im *importer.Importer, defaults Options) *Service {
	if im == nil {
		im = importer.New(0)
	}
	return &Service{store: s, importer: im, defaults: defaults}
}

// Defaults 默认导入选项
func (s *Service) Defaults() Options {
	return s.defaults
}

// Import 读取上传内容并写入存储
func (s *Service) Import(ctx context.Context, name string, r io.Reader, opts Options) (*model.ImportResult, error) {
	start := time.Now()

	upload, err := s.importer.Read(name, r)
	if err != nil {
		return nil, err
	}

	res := parser.New(opts.Parser).Parse(upload.Text)
	if res.Parsed() == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoMessages)
	}

	batch := BuildBatch(upload, res)
	chat, err := s.store.ImportChat(ctx, batch, types.ImportOptions{ReplaceAll: opts.ReplaceAll})
	if err != nil {
		return nil, fmt.Errorf("写入聊天记录失败: %w", err)
	}

	log.Info().
		Str("file", name).
		Int64("chat", chat.ID).
		Int("parsed", res.Parsed()).
		Int("skipped", res.SkippedCount()).
		Dur("cost", time.Since(start)).
		Msg("聊天记录导入完成")

	return &model.ImportResult{Chat: chat, Parsed: res.Parsed(), Skipped: res.SkippedByName()}, nil
}

// ImportFile 导入本地文件
func (s *Service) ImportFile(ctx context.Context, path string, opts Options) (*model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Import(ctx, filepath.Base(path), f, opts)
}

// Reparse 用新的解析选项重新解析已保存的原始导出，会话编号保持不变
func (s *Service) Reparse(ctx context.Context, chatID int64, opts parser.Options) (*model.ImportResult, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.GetRawExport(ctx, chatID)
	if err != nil {
		return nil, err
	}

	res := parser.New(opts).Parse(string(raw))
	if res.Parsed() == 0 {
		return nil, ErrNoMessages
	}

	upload := &importer.Upload{Name: chat.SourceName, Text: string(raw), Checksum: chat.Checksum}
	batch := BuildBatch(upload, res)
	batch.Chat.Name = chat.Name

	updated, err := s.store.ImportChat(ctx, batch, types.ImportOptions{})
	if err != nil {
		return nil, fmt.Errorf("写入聊天记录失败: %w", err)
	}
	log.Info().Int64("chat", chatID).Int("parsed", res.Parsed()).Msg("聊天记录已重新解析")

	return &model.ImportResult{Chat: updated, Parsed: res.Parsed(), Skipped: res.SkippedByName()}, nil
}

// BuildBatch 把解析结果转换为待写入的数据，参与者编号为首次出现的顺序
func BuildBatch(upload *importer.Upload, res *parser.Result) *model.ImportBatch {
	roster := participant.Resolve(res.Senders())

	msgs := make([]*model.Message, 0, len(res.Messages))
	for _, raw := range res.Messages {
		ts, err := model.ParseTimestamp(raw.Date, raw.Time)
		if err != nil {
			// 解析器已校验过日期，这里只做兜底
			log.Warn().Err(err).Int("line", raw.Line).Msg("跳过时间无效的消息")
			continue
		}
		id, _ := roster.ID(raw.Sender)
		msgs = append(msgs, &model.Message{
			PersonID:  id,
			Date:      raw.Date,
			Time:      raw.Time,
			Text:      raw.Text,
			Year:      ts.Year(),
			Kind:      analytics.Classify(raw.Text),
			Timestamp: ts,
		})
	}

	return &model.ImportBatch{
		Chat: model.Chat{
			Name:         ChatName(upload.Entry, upload.Name, roster.Names()),
			SourceName:   upload.Name,
			Checksum:     upload.Checksum,
			SkippedLines: res.SkippedCount(),
		},
		Participants: roster.Participants(0),
		Messages:     msgs,
		Raw:          []byte(upload.Text),
	}
}

// ChatName 推断会话名称：优先使用 "WhatsApp Chat with X" 中的 X，
// 其次是两人对话的双方名字，最后是文件名
func ChatName(entry, name string, senders []string) string {
	for _, n := range []string{entry, name} {
		base := strings.TrimSuffix(filepath.Base(n), filepath.Ext(n))
		lower := strings.ToLower(base)
		for _, prefix := range []string{"whatsapp chat with ", "whatsapp chat - "} {
			if strings.HasPrefix(lower, prefix) {
				return strings.TrimSpace(base[len(prefix):])
			}
		}
	}
	if len(senders) == 2 {
		return senders[0] + " & " + senders[1]
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		return "chat"
	}
	return base
}
