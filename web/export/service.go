// Package export 把会话导出为 CSV / XLSX / DOCX / TXT 文件。
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/store"
	"github.com/rs/zerolog/log"
)

// Format 导出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatTXT:  "text/plain; charset=utf-8",
}

// ParseFormat 校验导出格式，空字符串视为 csv
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatCSV, true
	}
	_, ok := contentTypes[f]
	return f, ok
}

// File 导出结果
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service 导出服务
type Service struct {
	Store store.Store
}

// NewService 创建导出服务
func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// Export 导出会话，year 为 0 时导出全部年份
func (s *Service) Export(ctx context.Context, chatID int64, year int, format Format) (*File, error) {
	chat, err := s.Store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	d, err := s.Store.GetDataset(ctx, chatID, year)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("chat", chatID).Int("year", year).Int("count", d.Len()).Str("format", string(format)).Msg("开始导出聊天记录")

	var data []byte
	switch format {
	case FormatCSV:
		data, err = CSV(d)
	case FormatXLSX:
		data, err = XLSX(chat.Name, d)
	case FormatDOCX:
		data, err = DOCX(chat.Name, d)
	case FormatTXT:
		data = TXT(d)
	default:
		return nil, fmt.Errorf("不支持的导出格式: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        fileName(chat.Name, year, format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

// TXT 按 WhatsApp 导出格式重新输出消息
func TXT(d *analytics.Dataset) []byte {
	var buf bytes.Buffer
	for _, m := range d.Messages {
		fmt.Fprintf(&buf, "%s, %s - %s: %s\n", m.Date, m.Time, d.Name(m.PersonID), m.Text)
	}
	return buf.Bytes()
}

func fileName(chatName string, year int, format Format) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(chatName))
	if base == "" {
		base = "chat"
	}
	if year > 0 {
		base = fmt.Sprintf("%s_%d", base, year)
	}
	return base + "." + string(format)
}

func rows(d *analytics.Dataset) [][]string {
	out := make([][]string, 0, len(d.Messages))
	for _, m := range d.Messages {
		out = append(out, m.CSV(d.Name(m.PersonID)))
	}
	return out
}

var messageHeader = []string{"时间", "发送人", "发送人编号", "类型", "内容"}
