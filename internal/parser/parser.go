// Package parser 将 WhatsApp 导出文本逐行解析为原始消息。
//
// 每一行都会得到一个带标签的结果：Parsed 或 Skipped(reason)，
// 便于调用方统计被丢弃的行。
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/afumu/watrace/internal/model"
)

// Reason 行被跳过的原因
type Reason string

const (
	Blank             Reason = "blank"
	NoDatePrefix      Reason = "no_date_prefix"
	NoSenderSeparator Reason = "no_sender_separator"
	InvalidDate       Reason = "invalid_date"
	Continuation      Reason = "continuation"
)

// ContinuationPolicy 处理没有日期前缀的行
type ContinuationPolicy int

const (
	// DropContinuation 丢弃续行，每一物理行独立判断
	DropContinuation ContinuationPolicy = iota
	// JoinContinuation 将续行拼接到上一条消息
	JoinContinuation
)

// Options 解析选项
type Options struct {
	Continuation ContinuationPolicy
	DayFirst     bool // true: D/M/YYYY；false: M/D/YYYY
}

// DefaultOptions 默认选项：严格模式，日在前
func DefaultOptions() Options {
	return Options{Continuation: DropContinuation, DayFirst: true}
}

// LineResult 单行解析结果
type LineResult struct {
	Line    int
	Parsed  bool
	Reason  Reason // Parsed 为 false 时有效
	Message *model.RawMessage
}

// Result 整个文件的解析结果
type Result struct {
	Messages []*model.RawMessage
	Lines    []LineResult
	Skipped  map[Reason]int
}

// Parsed 成功解析的消息数
func (r *Result) Parsed() int {
	return len(r.Messages)
}

// SkippedCount 被跳过的行数
func (r *Result) SkippedCount() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// SkippedByName 以字符串为键的跳过统计，用于序列化
func (r *Result) SkippedByName() map[string]int {
	out := make(map[string]int, len(r.Skipped))
	for k, v := range r.Skipped {
		out[string(k)] = v
	}
	return out
}

// Senders 按文件顺序返回每条消息的发送者
func (r *Result) Senders() []string {
	names := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		names[i] = m.Sender
	}
	return names
}

// 日期, 时间[ am|pm] - 剩余部分
var linePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4}),? (\d{1,2}):(\d{2})(?::\d{2})?(?: ?([aApP])\.? ?[mM]\.?)? - (.*)$`)

// 导出文件中常见的不可见字符
var invisibles = strings.NewReplacer(
	"\u200e", "",
	"\u200f", "",
	"\u202f", " ",
	"\u00a0", " ",
	"\r", "",
)

// Parser 聊天记录解析器
type Parser struct {
	opts Options
}

// New 创建解析器
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse 解析完整的导出文本
func (p *Parser) Parse(text string) *Result {
	res := &Result{Skipped: make(map[Reason]int)}
	var last *model.RawMessage

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := invisibles.Replace(raw)
		// 文件末尾的换行不计入
		if i == len(lines)-1 && strings.TrimSpace(line) == "" {
			break
		}

		msg, reason := p.ParseLine(line)
		if msg != nil {
			msg.Line = lineNo
			res.Messages = append(res.Messages, msg)
			res.Lines = append(res.Lines, LineResult{Line: lineNo, Parsed: true, Message: msg})
			last = msg
			continue
		}

		switch {
		case reason == NoSenderSeparator || reason == InvalidDate:
			// 带日期的跳过行之后的续行不再属于前一条消息
			last = nil
		case p.opts.Continuation == JoinContinuation && last != nil:
			last.Text += "\n" + line
			reason = Continuation
		}
		res.Skipped[reason]++
		res.Lines = append(res.Lines, LineResult{Line: lineNo, Reason: reason})
	}
	return res
}

// ParseLine 解析单行；无法解析时返回原因
func (p *Parser) ParseLine(line string) (*model.RawMessage, Reason) {
	if strings.TrimSpace(line) == "" {
		return nil, Blank
	}

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, NoDatePrefix
	}

	rest := m[7]
	sep := strings.Index(rest, ": ")
	if sep <= 0 {
		// 加密提示、成员变动等系统消息
		return nil, NoSenderSeparator
	}

	date, clock, ok := p.normalize(m[1], m[2], m[3], m[4], m[5], m[6])
	if !ok {
		return nil, InvalidDate
	}

	return &model.RawMessage{
		Sender: rest[:sep],
		Date:   date,
		Time:   clock,
		Text:   rest[sep+2:],
	}, ""
}

// normalize 校验日期时间并转换为 D/M/YYYY 与 HH:MM
func (p *Parser) normalize(a, b, year, hour, minute, meridiem string) (string, string, bool) {
	day, month := a, b
	if !p.opts.DayFirst {
		day, month = b, a
	}

	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)

	if len(year) == 2 {
		y += 2000
	}

	switch strings.ToLower(meridiem) {
	case "a":
		if h < 1 || h > 12 {
			return "", "", false
		}
		if h == 12 {
			h = 0
		}
	case "p":
		if h < 1 || h > 12 {
			return "", "", false
		}
		if h != 12 {
			h += 12
		}
	}

	if mo < 1 || mo > 12 || d < 1 || h > 23 || mi > 59 {
		return "", "", false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, 0, 0, time.UTC)
	if t.Day() != d {
		return "", "", false
	}

	return fmt.Sprintf("%d/%d/%d", d, mo, y), fmt.Sprintf("%02d:%02d", h, mi), true
}
