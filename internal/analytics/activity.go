package analytics

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/pkg/wordcloud"
)

const dateLayout = "2006-01-02"

// PersonStats 统计每个参与者的消息、单词、媒体等数量，按消息数降序
func PersonStats(d *Dataset) []*model.PersonStat {
	byID := make(map[int64]*model.PersonStat)
	var result []*model.PersonStat
	for _, id := range d.personIDs() {
		s := &model.PersonStat{PersonID: id, Name: d.Name(id)}
		byID[id] = s
		result = append(result, s)
	}

	for _, m := range d.Messages {
		s := byID[m.PersonID]
		s.Messages++
		s.Emojis += len(wordcloud.Emojis(m.Text))

		switch kindOf(m) {
		case model.KindMedia:
			s.Media++
		case model.KindDeleted:
			s.Deleted++
		case model.KindText:
			s.Words += len(wordcloud.Tokenize(m.Text))
			s.Characters += utf8.RuneCountInString(m.Text)
			s.Links += wordcloud.Links(m.Text)
		}
	}

	for _, s := range result {
		s.Share = ratio(s.Messages, d.Len())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Messages > result[j].Messages
	})
	return result
}

// HourlyActivity 0-23 点每小时消息数
func HourlyActivity(d *Dataset) []*model.HourlyStat {
	var counts [24]int
	for _, m := range d.Messages {
		counts[m.Timestamp.Hour()]++
	}
	result := make([]*model.HourlyStat, 0, 24)
	for i := 0; i < 24; i++ {
		result = append(result, &model.HourlyStat{Hour: i, Count: counts[i]})
	}
	return result
}

// DailyActivity 从第一条到最后一条消息之间每天的消息数，没有消息的日子记 0
func DailyActivity(d *Dataset) []*model.DailyStat {
	if d.Len() == 0 {
		return []*model.DailyStat{}
	}

	counts := dailyCounts(d)
	first := truncateDay(d.Messages[0].Timestamp)
	last := truncateDay(d.Messages[d.Len()-1].Timestamp)

	var result []*model.DailyStat
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		result = append(result, &model.DailyStat{Date: key, Count: counts[key]})
	}
	return result
}

// WeekdayActivity 周一到周日 (1-7) 的消息数
func WeekdayActivity(d *Dataset) []*model.WeekdayStat {
	var counts [8]int
	for _, m := range d.Messages {
		counts[isoWeekday(m.Timestamp)]++
	}
	result := make([]*model.WeekdayStat, 0, 7)
	for i := 1; i <= 7; i++ {
		result = append(result, &model.WeekdayStat{Weekday: i, Count: counts[i]})
	}
	return result
}

// MonthlyActivity 1-12 月的消息数
func MonthlyActivity(d *Dataset) []*model.MonthlyStat {
	var counts [13]int
	for _, m := range d.Messages {
		counts[int(m.Timestamp.Month())]++
	}
	result := make([]*model.MonthlyStat, 0, 12)
	for i := 1; i <= 12; i++ {
		result = append(result, &model.MonthlyStat{Month: i, Count: counts[i]})
	}
	return result
}

func dailyCounts(d *Dataset) map[string]int {
	counts := make(map[string]int)
	for _, m := range d.Messages {
		counts[m.Timestamp.Format(dateLayout)]++
	}
	return counts
}

func truncateDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
