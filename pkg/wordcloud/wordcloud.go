package wordcloud

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/afumu/watrace/internal/model"
	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

// MinWordLength 进入词频表的最短单词长度
const MinWordLength = 4

// 英文停用词表 (长度不足 4 的词本身会被过滤，这里只列较长的常见词)
var stopWords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "being": true, "cant": true, "could": true, "didn't": true,
	"didnt": true, "does": true, "doesn't": true, "doesnt": true, "doing": true,
	"don't": true, "dont": true, "down": true, "each": true, "even": true,
	"from": true, "going": true, "gonna": true, "have": true, "having": true,
	"here": true, "it's": true, "just": true, "know": true, "like": true,
	"made": true, "make": true, "many": true, "more": true, "most": true,
	"much": true, "must": true, "need": true, "only": true, "other": true,
	"over": true, "really": true, "same": true, "should": true, "some": true,
	"still": true, "such": true, "sure": true, "take": true, "than": true,
	"that": true, "that's": true, "thats": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "thing": true,
	"think": true, "this": true, "those": true, "though": true, "through": true,
	"very": true, "want": true, "wanna": true, "well": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"will": true, "with": true, "would": true, "yeah": true, "your": true,
	"you're": true, "youre": true, "because": true, "into": true, "okay": true,
	"omitted": true, "media": true, "message": true, "deleted": true, "null": true,
}

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// IsStopWord 是否为停用词
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}

// Analyze 对文本列表进行词频统计
func Analyze(texts []string, limit int) *model.WordStats {
	if limit <= 0 {
		limit = 100
	}

	freq := make(map[string]int)
	totalWords := 0
	for _, text := range texts {
		for _, w := range Tokenize(text) {
			totalWords++
			if Countable(w) {
				freq[w]++
			}
		}
	}

	return &model.WordStats{
		TotalMessages: len(texts),
		TotalWords:    totalWords,
		Words:         Top(freq, limit),
	}
}

// Countable 单词是否进入词频表
func Countable(w string) bool {
	if utf8.RuneCountInString(w) < MinWordLength || stopWords[w] {
		return false
	}
	for _, r := range w {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Tokenize 把文本切分为小写单词，忽略链接与表情
func Tokenize(text string) []string {
	text = urlPattern.ReplaceAllString(text, " ")

	var words []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			w := strings.Trim(strings.ToLower(word.String()), "'")
			if w != "" {
				words = append(words, w)
			}
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			word.WriteRune(r)
		case (r == '\'' || r == '’') && word.Len() > 0:
			word.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()
	return words
}

// Emojis 按字素簇提取文本中的表情
func Emojis(text string) []string {
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if IsEmoji(g.Str()) {
			out = append(out, g.Str())
		}
	}
	return out
}

// IsEmojiOnly 去掉空白后是否只剩表情
func IsEmojiOnly(text string) bool {
	seen := false
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		if strings.TrimSpace(cluster) == "" {
			continue
		}
		if !IsEmoji(cluster) {
			return false
		}
		seen = true
	}
	return seen
}

const (
	emojiVariation = '\uFE0F' // 表情样式选择符
	keycap         = '\u20E3' // 键帽 1️⃣
)

// IsEmoji 单个字素簇是否为表情。
// 带表情样式选择符或键帽的簇一律视为表情，其余以 Unicode 表情数据为准，
// 因此 ★ ✓ ♪ 以及文本样式的 ™ 不算表情。
func IsEmoji(cluster string) bool {
	if cluster == "" {
		return false
	}
	if strings.ContainsRune(cluster, emojiVariation) || strings.ContainsRune(cluster, keycap) {
		return true
	}
	if len(cluster) == 1 {
		// 单个 ASCII 字符 (# * 0-9) 只有组成键帽时才是表情
		return false
	}
	return gomoji.ContainsEmoji(cluster)
}

// Top 按次数降序 (同次数按字典序) 返回前 limit 项
func Top(freq map[string]int, limit int) []*model.FrequencyItem {
	items := make([]*model.FrequencyItem, 0, len(freq))
	for text, count := range freq {
		items = append(items, &model.FrequencyItem{Text: text, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Text < items[j].Text
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Links 统计文本中的链接数量
func Links(text string) int {
	return len(urlPattern.FindAllStringIndex(text, -1))
}
