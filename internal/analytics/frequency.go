package analytics

import (
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/pkg/wordcloud"
)

// DefaultLimit 频次表默认返回条数
const DefaultLimit = 50

// EmojiFrequency 表情频次，按字素簇计数 (肤色、旗帜等组合表情算一个)
func EmojiFrequency(d *Dataset, limit int) *model.EmojiStats {
	if limit <= 0 {
		limit = DefaultLimit
	}

	overall := make(map[string]int)
	perPerson := make(map[int64]map[string]int)
	total := 0
	for _, m := range d.Messages {
		for _, e := range wordcloud.Emojis(m.Text) {
			total++
			overall[e]++
			if perPerson[m.PersonID] == nil {
				perPerson[m.PersonID] = make(map[string]int)
			}
			perPerson[m.PersonID][e]++
		}
	}

	stats := &model.EmojiStats{
		Total:    total,
		Overall:  wordcloud.Top(overall, limit),
		ByPerson: make(map[int64][]*model.FrequencyItem, len(perPerson)),
	}
	for id, freq := range perPerson {
		stats.ByPerson[id] = wordcloud.Top(freq, limit)
	}

	switch {
	case d.Len() == 0:
		stats.Note = NoteEmpty
	case total == 0:
		stats.Note = NoteNoEmojis
	}
	return stats
}

// WordFrequency 词频表，只统计普通文本消息；媒体占位、纯表情与撤回消息不参与
func WordFrequency(d *Dataset, limit int) *model.WordStats {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var texts []string
	for _, m := range d.Messages {
		if kindOf(m) == model.KindText {
			texts = append(texts, m.Text)
		}
	}

	stats := wordcloud.Analyze(texts, limit)
	switch {
	case d.Len() == 0:
		stats.Note = NoteEmpty
	case len(texts) == 0:
		stats.Note = NoteNoWords
	}
	return stats
}
