package analytics

import (
	"sort"
	"time"

	"github.com/afumu/watrace/internal/model"
)

// 间隔阈值
const (
	ThreadGap      = 4 * time.Hour  // 超过即开启新对话
	CrossDayGap    = 1 * time.Hour  // 跨天且超过即开启新对话
	SilentGap      = 4 * time.Hour  // 不小于即记为沉默期
	ResponseWindow = 24 * time.Hour // 超过则不算回复
)

// StartsThread 判断 cur 是否开启一段新对话
func StartsThread(prev, cur time.Time) bool {
	gap := cur.Sub(prev)
	if gap > ThreadGap {
		return true
	}
	return gap > CrossDayGap && !sameDay(prev, cur)
}

// Segment 按间隔切分对话，第一条消息总是开启一段对话
func Segment(d *Dataset) []*model.Thread {
	threads := []*model.Thread{}
	var cur *model.Thread
	for i, m := range d.Messages {
		if i == 0 || StartsThread(d.Messages[i-1].Timestamp, m.Timestamp) {
			cur = &model.Thread{
				Index:     len(threads),
				StarterID: m.PersonID,
				Start:     m.Timestamp,
				First:     i,
			}
			threads = append(threads, cur)
		}
		cur.Messages++
		cur.End = m.Timestamp
		cur.Duration = cur.End.Sub(cur.Start)
	}
	return threads
}

// ConversationStarters 统计每个人发起对话的次数
func ConversationStarters(d *Dataset) *model.StarterStats {
	if d.Len() < 2 {
		return &model.StarterStats{Persons: []*model.StarterStat{}, Note: note(d)}
	}

	threads := Segment(d)
	counts := make(map[int64]int)
	for _, t := range threads {
		counts[t.StarterID]++
	}
	return &model.StarterStats{
		Threads: len(threads),
		Persons: rank(d, counts, len(threads)),
	}
}

// SilentPeriods 找出所有不小于 4 小时的间隔，结束沉默的人即为唤醒者
func SilentPeriods(d *Dataset) *model.SilentPeriodStats {
	buckets := silentBuckets()
	stats := &model.SilentPeriodStats{
		Periods:  []*model.SilentPeriod{},
		Buckets:  buckets,
		Revivers: []*model.StarterStat{},
	}
	if d.Len() < 2 {
		stats.Note = note(d)
		return stats
	}

	revivers := make(map[int64]int)
	for i := 1; i < d.Len(); i++ {
		prev, cur := d.Messages[i-1], d.Messages[i]
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap < SilentGap {
			continue
		}

		p := &model.SilentPeriod{
			Start:     prev.Timestamp,
			End:       cur.Timestamp,
			Hours:     gap.Hours(),
			ReviverID: cur.PersonID,
		}
		stats.Periods = append(stats.Periods, p)
		revivers[cur.PersonID]++
		buckets[silentBucket(gap)].Count++
		if stats.Longest == nil || p.Hours > stats.Longest.Hours {
			stats.Longest = p
		}
	}
	stats.Revivers = rank(d, revivers, len(stats.Periods))
	return stats
}

func silentBuckets() []*model.Bucket {
	return []*model.Bucket{
		{Label: "4-8h"},
		{Label: "8-24h"},
		{Label: "1-2d"},
		{Label: "2-7d"},
		{Label: "1w+"},
	}
}

func silentBucket(gap time.Duration) int {
	const day = 24 * time.Hour
	switch {
	case gap < 8*time.Hour:
		return 0
	case gap < day:
		return 1
	case gap < 2*day:
		return 2
	case gap < 7*day:
		return 3
	default:
		return 4
	}
}

// ResponseTimes 统计回复耗时：只看相邻且发送者不同、间隔不超过 24 小时的消息对，
// 耗时记在回复者名下
func ResponseTimes(d *Dataset) *model.ResponseTimeStats {
	if d.Len() < 2 {
		return &model.ResponseTimeStats{Persons: []*model.ResponseTimeStat{}, Note: note(d)}
	}

	samples := make(map[int64][]float64)
	for i := 1; i < d.Len(); i++ {
		prev, cur := d.Messages[i-1], d.Messages[i]
		if cur.PersonID == prev.PersonID {
			continue
		}
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap > ResponseWindow {
			continue
		}
		samples[cur.PersonID] = append(samples[cur.PersonID], gap.Minutes())
	}

	result := make([]*model.ResponseTimeStat, 0, len(samples))
	for _, id := range d.personIDs() {
		s, ok := samples[id]
		if !ok {
			continue
		}
		sort.Float64s(s)
		sum := 0.0
		for _, v := range s {
			sum += v
		}
		result = append(result, &model.ResponseTimeStat{
			PersonID:      id,
			Name:          d.Name(id),
			Samples:       len(s),
			AverageMinute: sum / float64(len(s)),
			MedianMinute:  median(s),
			FastestMinute: s[0],
			SlowestMinute: s[len(s)-1],
		})
	}
	return &model.ResponseTimeStats{Persons: result}
}

// ThreadLengths 对话长度分布，分别按消息数与持续时长分桶
func ThreadLengths(d *Dataset) *model.ThreadLengthStats {
	stats := &model.ThreadLengthStats{
		ByMessages: []*model.Bucket{
			{Label: "1"}, {Label: "2-5"}, {Label: "6-20"}, {Label: "21-50"}, {Label: "51+"},
		},
		ByDuration: []*model.Bucket{
			{Label: "<5m"}, {Label: "5-30m"}, {Label: "30m-1h"}, {Label: "1-3h"}, {Label: "3h+"},
		},
	}
	if d.Len() < 2 {
		stats.Note = note(d)
		return stats
	}

	threads := Segment(d)
	total := 0
	for _, t := range threads {
		total += t.Messages
		stats.ByMessages[lengthBucket(t.Messages)].Count++
		stats.ByDuration[durationBucket(t.Duration)].Count++
		if stats.LongestThread == nil || t.Messages > stats.LongestThread.Messages {
			stats.LongestThread = t
		}
	}
	stats.Threads = len(threads)
	stats.AverageMessages = ratio(total, len(threads))
	return stats
}

func lengthBucket(n int) int {
	switch {
	case n <= 1:
		return 0
	case n <= 5:
		return 1
	case n <= 20:
		return 2
	case n <= 50:
		return 3
	default:
		return 4
	}
}

func durationBucket(dur time.Duration) int {
	switch {
	case dur < 5*time.Minute:
		return 0
	case dur < 30*time.Minute:
		return 1
	case dur < time.Hour:
		return 2
	case dur < 3*time.Hour:
		return 3
	default:
		return 4
	}
}

// rank 把计数转成按次数降序的列表，同次数按花名册顺序
func rank(d *Dataset, counts map[int64]int, total int) []*model.StarterStat {
	result := make([]*model.StarterStat, 0, len(counts))
	for _, id := range d.personIDs() {
		if c, ok := counts[id]; ok {
			result = append(result, &model.StarterStat{
				PersonID: id,
				Name:     d.Name(id),
				Count:    c,
				Share:    ratio(c, total),
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func note(d *Dataset) string {
	if d.Len() == 0 {
		return NoteEmpty
	}
	return NoteTooFew
}
