package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/afumu/watrace/internal/model"
)

// RepeatLimit 复读统计最多返回的条数
const RepeatLimit = 50

// RepeatAnalysis 复读分析：同一段文本被不同的人连续发送
func RepeatAnalysis(d *Dataset) []*model.RepeatStat {
	repeatCounts := make(map[string]*model.RepeatStat)
	lastContent := ""
	var lastSender int64
	currentChainCount := 0

	for _, m := range d.Messages {
		if kindOf(m) != model.KindText && kindOf(m) != model.KindEmojiOnly {
			lastContent = ""
			continue
		}
		content := strings.TrimSpace(m.Text)
		if content == "" {
			continue
		}

		if content == lastContent && m.PersonID != lastSender {
			currentChainCount++
			if currentChainCount >= 2 {
				stat, ok := repeatCounts[content]
				if !ok {
					stat = &model.RepeatStat{Content: content}
					repeatCounts[content] = stat
				}
				stat.Count++
				stat.MemberName = d.Name(m.PersonID)
			}
		} else {
			lastContent = content
			currentChainCount = 0
		}
		lastSender = m.PersonID
	}

	result := make([]*model.RepeatStat, 0, len(repeatCounts))
	for _, s := range repeatCounts {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Content < result[j].Content
	})

	if len(result) > RepeatLimit {
		result = result[:RepeatLimit]
	}
	return result
}

// Overview 会话概览：总量、活跃天数、最忙与最闲的一天、最长连续活跃天数等
func Overview(d *Dataset) *model.Overview {
	ov := &model.Overview{Participants: len(d.personIDs())}
	if d.Len() == 0 {
		ov.Note = NoteEmpty
		return ov
	}

	for _, s := range PersonStats(d) {
		ov.TotalWords += s.Words
		ov.TotalMedia += s.Media
	}
	ov.TotalMessages = d.Len()

	first := d.Messages[0].Timestamp
	last := d.Messages[d.Len()-1].Timestamp
	ov.FirstDate = first.Format(dateLayout)
	ov.LastDate = last.Format(dateLayout)
	ov.SpanDays = int(truncateDay(last).Sub(truncateDay(first))/(24*time.Hour)) + 1

	counts := dailyCounts(d)
	ov.ActiveDays = len(counts)
	ov.AveragePerDay = ratio(ov.TotalMessages, ov.SpanDays)

	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// 同样多时取较早的一天
	ov.BusiestDay = model.DayCount{Date: dates[0], Count: counts[dates[0]]}
	ov.QuietestDay = ov.BusiestDay
	for _, date := range dates[1:] {
		c := counts[date]
		if c > ov.BusiestDay.Count {
			ov.BusiestDay = model.DayCount{Date: date, Count: c}
		}
		if c < ov.QuietestDay.Count {
			ov.QuietestDay = model.DayCount{Date: date, Count: c}
		}
	}
	ov.LongestStreak = longestStreak(dates)

	earliest, latest := 24*60, -1
	for _, m := range d.Messages {
		if m.Timestamp.Hour() < 5 {
			ov.LateNightCount++
		}
		minute := m.Timestamp.Hour()*60 + m.Timestamp.Minute()
		if minute < earliest {
			earliest = minute
		}
		if minute > latest {
			latest = minute
		}
	}
	ov.EarliestMessage = fmt.Sprintf("%02d:%02d", earliest/60, earliest%60)
	ov.LatestMessage = fmt.Sprintf("%02d:%02d", latest/60, latest%60)
	return ov
}

// longestStreak 计算最长连续活跃天数，dates 需已升序
func longestStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		prev, err1 := time.Parse(dateLayout, dates[i-1])
		curr, err2 := time.Parse(dateLayout, dates[i])
		if err1 != nil || err2 != nil {
			current = 1
			continue
		}
		if curr.Sub(prev) == 24*time.Hour {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}
