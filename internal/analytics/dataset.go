// Package analytics 对一个会话的消息做各类统计。
//
// 所有统计都是纯函数：输入为按时间排好序的 Dataset，输出为 model 中的结果结构，
// 互不依赖。消息过少时返回带 Note 的空结果，不会报错。
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/pkg/wordcloud"
	"github.com/rs/zerolog/log"
)

// 占位说明
const (
	NoteEmpty    = "没有可统计的消息"
	NoteTooFew   = "消息少于 2 条，无法计算间隔类统计"
	NoteNoWords  = "没有可统计的文本消息"
	NoteNoEmojis = "消息中没有表情"
)

// Dataset 按时间稳定排序后的消息集合
type Dataset struct {
	Messages []*model.Message
	Persons  []*model.Participant
	names    map[int64]string
}

// NewDataset 复制并按时间戳稳定排序；时间戳相同的消息保持原有顺序。
// 缺少时间戳的消息由 Date/Time 还原，还原失败的消息被丢弃。
func NewDataset(msgs []*model.Message, persons []*model.Participant) *Dataset {
	sorted := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if m.Timestamp.IsZero() {
			ts, err := model.ParseTimestamp(m.Date, m.Time)
			if err != nil {
				log.Warn().Err(err).Int64("id", m.ID).Msg("消息时间无法解析，已跳过")
				continue
			}
			cp := *m
			cp.Timestamp = ts
			m = &cp
		}
		sorted = append(sorted, m)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	names := make(map[int64]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.Name
	}
	return &Dataset{Messages: sorted, Persons: persons, names: names}
}

// Len 消息数量
func (d *Dataset) Len() int {
	return len(d.Messages)
}

// Name 参与者名称
func (d *Dataset) Name(personID int64) string {
	if n, ok := d.names[personID]; ok {
		return n
	}
	return fmt.Sprintf("#%d", personID)
}

// Year 只保留指定年份的消息，year 为 0 时返回自身
func (d *Dataset) Year(year int) *Dataset {
	if year == 0 {
		return d
	}
	out := &Dataset{Persons: d.Persons, names: d.names}
	for _, m := range d.Messages {
		if m.Timestamp.Year() == year {
			out.Messages = append(out.Messages, m)
		}
	}
	return out
}

// Years 数据集中出现过的年份 (升序)
func (d *Dataset) Years() []int {
	var years []int
	for _, m := range d.Messages {
		y := m.Timestamp.Year()
		if len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// personIDs 先按花名册顺序，再补上花名册里没有的发送者
func (d *Dataset) personIDs() []int64 {
	seen := make(map[int64]bool, len(d.Persons))
	ids := make([]int64, 0, len(d.Persons))
	for _, p := range d.Persons {
		if !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	for _, m := range d.Messages {
		if !seen[m.PersonID] {
			seen[m.PersonID] = true
			ids = append(ids, m.PersonID)
		}
	}
	return ids
}

// Classify 根据文本判断消息类别
func Classify(text string) model.MessageKind {
	t := strings.TrimSpace(text)
	if t == model.MediaPlaceholder {
		return model.KindMedia
	}
	for _, p := range model.DeletedPlaceholders {
		if t == p {
			return model.KindDeleted
		}
	}
	if wordcloud.IsEmojiOnly(t) {
		return model.KindEmojiOnly
	}
	return model.KindText
}

func kindOf(m *model.Message) model.MessageKind {
	if m.Kind != "" {
		return m.Kind
	}
	return Classify(m.Text)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
