// Package importer 读取用户上传的 WhatsApp 导出文件 (.txt 或包含 .txt 的 .zip)，
// 并将其解码为 UTF-8 文本。
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedFileType = errors.New("不支持的文件类型，仅支持 .txt 或 .zip")
	ErrNoTextFileFound     = errors.New("压缩包中没有找到 .txt 聊天记录")
	ErrDecodeFailed        = errors.New("无法解码聊天记录文本")
	ErrTooLarge            = errors.New("上传文件过大")
)

// DefaultMaxBytes 默认上传上限
const DefaultMaxBytes = 64 << 20

// FileKind 上传文件类型
type FileKind int

const (
	Unknown FileKind = iota
	Text
	Zip
)

func (k FileKind) String() string {
	switch k {
	case Text:
		return "text"
	case Zip:
		return "zip"
	default:
		return "unknown"
	}
}

// Identify 根据文件名判断上传类型
func Identify(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return Text
	case ".zip":
		return Zip
	default:
		return Unknown
	}
}

// Upload 解码后的上传内容
type Upload struct {
	Name     string // 原始文件名
	Entry    string // zip 内被选中的条目；纯文本上传时与 Name 相同
	Text     string
	Checksum string
}

// Importer 负责读取上传文件
type Importer struct {
	MaxBytes int64
}

// New 创建 Importer，maxBytes <= 0 时使用默认上限
func New(maxBytes int64) *Importer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Importer{MaxBytes: maxBytes}
}

// Read 读取上传文件并返回解码后的文本
func (im *Importer) Read(name string, r io.Reader) (*Upload, error) {
	kind := Identify(name)
	if kind == Unknown {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFileType)
	}

	data, err := io.ReadAll(io.LimitReader(r, im.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if int64(len(data)) > im.MaxBytes {
		return nil, fmt.Errorf("%s 超过 %d 字节: %w", name, im.MaxBytes, ErrTooLarge)
	}

	entry := name
	if kind == Zip {
		entry, data, err = im.extractText(data)
		if err != nil {
			return nil, err
		}
	}

	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &Upload{
		Name:     name,
		Entry:    entry,
		Text:     text,
		Checksum: Checksum(text),
	}, nil
}

// extractText 从 zip 中挑选聊天记录文本
func (im *Importer) extractText(data []byte) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("无法打开压缩包: %w", err)
	}

	var chosen *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || Identify(f.Name) != Text {
			continue
		}
		// macOS 打包时附带的资源分支文件
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if chosen == nil || isChatEntry(f.Name) && !isChatEntry(chosen.Name) {
			chosen = f
		}
	}
	if chosen == nil {
		return "", nil, ErrNoTextFileFound
	}
	if chosen.UncompressedSize64 > uint64(im.MaxBytes) {
		return "", nil, fmt.Errorf("%s 解压后过大: %w", chosen.Name, ErrTooLarge)
	}

	rc, err := chosen.Open()
	if err != nil {
		return "", nil, fmt.Errorf("无法读取 %s: %w", chosen.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, im.MaxBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("解压 %s 失败: %w", chosen.Name, err)
	}
	if int64(len(content)) > im.MaxBytes {
		return "", nil, fmt.Errorf("%s 解压后过大: %w", chosen.Name, ErrTooLarge)
	}
	return chosen.Name, content, nil
}

// isChatEntry Android 导出为 "WhatsApp Chat with X.txt"，iOS 导出为 "_chat.txt"
func isChatEntry(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	return base == "_chat.txt" || strings.HasPrefix(base, "whatsapp chat")
}

// Decode 将原始字节解码为 UTF-8 文本。
// 支持带 BOM 的 UTF-8 与 UTF-16 (LE/BE)。
func Decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		data = out
	default:
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	}

	if !utf8.Valid(data) {
		return "", ErrDecodeFailed
	}
	return string(data), nil
}

// Checksum 文本内容指纹，用于识别重复导入
func Checksum(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}
