package model

import (
	"fmt"
	"strings"
	"time"
)

// MediaPlaceholder 是导出文件中媒体消息的占位文本
const MediaPlaceholder = "<Media omitted>"

// DeletedPlaceholders 被撤回消息在导出中的文本
var DeletedPlaceholders = []string{
	"This message was deleted",
	"You deleted this message",
}

// MessageKind 消息分类
type MessageKind string

const (
	KindText      MessageKind = "text"
	KindMedia     MessageKind = "media"
	KindEmojiOnly MessageKind = "emoji_only"
	KindDeleted   MessageKind = "deleted"
)

// RawMessage 解析器输出的原始消息（尚未关联参与者）
type RawMessage struct {
	Sender string `json:"sender"`
	Date   string `json:"date"` // D/M/YYYY
	Time   string `json:"time"` // HH:MM
	Text   string `json:"text"`
	Line   int    `json:"line"` // 源文件中的行号 (1 起)
}

// Message 入库后的消息
type Message struct {
	ID        int64       `json:"id"`
	PersonID  int64       `json:"personId"`
	ChatID    int64       `json:"chatId"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	Text      string      `json:"text"`
	Year      int         `json:"year"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
}

// IsMedia 是否为媒体占位消息
func (m *Message) IsMedia() bool {
	return m.Kind == KindMedia || strings.TrimSpace(m.Text) == MediaPlaceholder
}

// CSV 返回导出用的一行数据
func (m *Message) CSV(senderName string) []string {
	return []string{
		m.Timestamp.Format("2006-01-02 15:04"),
		senderName,
		fmt.Sprintf("%d", m.PersonID),
		string(m.Kind),
		m.Text,
	}
}

// Participant 聊天参与者
type Participant struct {
	ID      int64  `json:"id"`
	ChatID  int64  `json:"chatId"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"` // 首次出现的顺序 (1 起)
}

// Chat 一次导入对应的会话
type Chat struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SourceName   string    `json:"sourceName"`
	Checksum     string    `json:"checksum"`
	ImportedAt   time.Time `json:"importedAt"`
	MessageCount int       `json:"messageCount"`
	SkippedLines int       `json:"skippedLines"`
}

// ImportBatch 一次导入需要写入存储的全部数据
type ImportBatch struct {
	Chat         Chat
	Participants []*Participant // ID 为花名册中的序号，入库时重新分配
	Messages     []*Message     // PersonID 指向花名册序号
	Raw          []byte         // 原始导出文本
}

// ImportResult 导入结果
type ImportResult struct {
	Chat    *Chat          `json:"chat"`
	Parsed  int            `json:"parsed"`
	Skipped map[string]int `json:"skipped"`
}

// ParseTimestamp 由 D/M/YYYY 与 HH:MM 还原时间。
// 导出文件不带时区，这里统一按 UTC 编码墙上时间。
func ParseTimestamp(date, clock string) (time.Time, error) {
	var d, mo, y, h, mi int
	if _, err := fmt.Sscanf(date, "%d/%d/%d", &d, &mo, &y); err != nil {
		return time.Time{}, fmt.Errorf("无效日期 %q: %w", date, err)
	}
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &mi); err != nil {
		return time.Time{}, fmt.Errorf("无效时间 %q: %w", clock, err)
	}
	t := time.Date(y, time.Month(mo), d, h, mi, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo || t.Hour() != h || t.Minute() != mi {
		return time.Time{}, fmt.Errorf("日期超出范围: %s %s", date, clock)
	}
	return t, nil
}

// StoreStatus 数据库概况
type StoreStatus struct {
	Path     string `json:"path"`
	Chats    int    `json:"chats"`
	Persons  int    `json:"persons"`
	Messages int    `json:"messages"`
	DBSize   int64  `json:"dbSize"`
}
