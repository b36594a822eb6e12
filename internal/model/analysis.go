package model

import "time"

// HourlyStat 每小时活跃度统计
type HourlyStat struct {
	Hour  int `json:"hour"`  // 0-23
	Count int `json:"count"` // 消息数量
}

// DailyStat 每日活跃度统计
type DailyStat struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Count int    `json:"count"` // 消息数量
}

// WeekdayStat 星期活跃度统计
type WeekdayStat struct {
	Weekday int `json:"weekday"` // 1-7 (周一到周日)
	Count   int `json:"count"`   // 消息数量
}

// MonthlyStat 月份活跃度统计
type MonthlyStat struct {
	Month int `json:"month"` // 1-12
	Count int `json:"count"` // 消息数量
}

// PersonStat 每个参与者的计数
type PersonStat struct {
	PersonID   int64   `json:"personId"`
	Name       string  `json:"name"`
	Messages   int     `json:"messages"`
	Words      int     `json:"words"`
	Characters int     `json:"characters"`
	Media      int     `json:"media"`
	Emojis     int     `json:"emojis"`
	Links      int     `json:"links"`
	Deleted    int     `json:"deleted"`
	Share      float64 `json:"share"` // 占总消息比例
}

// FrequencyItem 词频 / 表情频次项
type FrequencyItem struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// EmojiStats 表情统计
type EmojiStats struct {
	Total    int                        `json:"total"`
	Overall  []*FrequencyItem           `json:"overall"`
	ByPerson map[int64][]*FrequencyItem `json:"byPerson"`
	Note     string                     `json:"note,omitempty"`
}

// WordStats 词频统计
type WordStats struct {
	TotalMessages int              `json:"totalMessages"` // 参与统计的消息数
	TotalWords    int              `json:"totalWords"`
	Words         []*FrequencyItem `json:"words"`
	Note          string           `json:"note,omitempty"`
}

// Thread 一段连续的对话
type Thread struct {
	Index     int           `json:"index"`
	StarterID int64         `json:"starterId"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Messages  int           `json:"messages"`
	Duration  time.Duration `json:"duration"`
	First     int           `json:"first"` // 在排序后数据集中的起始下标
}

// StarterStat 对话发起次数
type StarterStat struct {
	PersonID int64   `json:"personId"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// StarterStats 对话发起统计
type StarterStats struct {
	Threads int            `json:"threads"`
	Persons []*StarterStat `json:"persons"`
	Note    string         `json:"note,omitempty"`
}

// SilentPeriod 沉默期 (相邻消息间隔 >= 4 小时)
type SilentPeriod struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Hours     float64   `json:"hours"`
	ReviverID int64     `json:"reviverId"`
}

// Bucket 直方图区间
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SilentPeriodStats 沉默期统计
type SilentPeriodStats struct {
	Periods  []*SilentPeriod `json:"periods"`
	Buckets  []*Bucket       `json:"buckets"`
	Revivers []*StarterStat  `json:"revivers"`
	Longest  *SilentPeriod   `json:"longest,omitempty"`
	Note     string          `json:"note,omitempty"`
}

// ResponseTimeStat 每个参与者的回复耗时
type ResponseTimeStat struct {
	PersonID      int64   `json:"personId"`
	Name          string  `json:"name"`
	Samples       int     `json:"samples"`
	AverageMinute float64 `json:"averageMinutes"`
	MedianMinute  float64 `json:"medianMinutes"`
	FastestMinute float64 `json:"fastestMinutes"`
	SlowestMinute float64 `json:"slowestMinutes"`
}

// ResponseTimeStats 回复耗时统计
type ResponseTimeStats struct {
	Persons []*ResponseTimeStat `json:"persons"`
	Note    string              `json:"note,omitempty"`
}

// ThreadLengthStats 对话长度分布
type ThreadLengthStats struct {
	Threads         int       `json:"threads"`
	ByMessages      []*Bucket `json:"byMessages"`
	ByDuration      []*Bucket `json:"byDuration"`
	AverageMessages float64   `json:"averageMessages"`
	LongestThread   *Thread   `json:"longestThread,omitempty"`
	Note            string    `json:"note,omitempty"`
}

// RepeatStat 复读统计项
type RepeatStat struct {
	Content    string `json:"content"`    // 复读的内容
	Count      int    `json:"count"`      // 该内容复读总次数
	MemberName string `json:"memberName"` // 最近一次参与复读的成员
}

// DayCount 日期消息计数
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Overview 概览
type Overview struct {
	TotalMessages   int      `json:"totalMessages"`
	TotalWords      int      `json:"totalWords"`
	TotalMedia      int      `json:"totalMedia"`
	Participants    int      `json:"participants"`
	FirstDate       string   `json:"firstDate"`
	LastDate        string   `json:"lastDate"`
	SpanDays        int      `json:"spanDays"`
	ActiveDays      int      `json:"activeDays"`
	AveragePerDay   float64  `json:"averagePerDay"`
	BusiestDay      DayCount `json:"busiestDay"`
	QuietestDay     DayCount `json:"quietestDay"` // 有消息的日子里最少的一天
	LongestStreak   int      `json:"longestStreak"`
	LateNightCount  int      `json:"lateNightCount"` // 0-5 点
	EarliestMessage string   `json:"earliestMessage"`
	LatestMessage   string   `json:"latestMessage"`
	Note            string   `json:"note,omitempty"`
}

// Report 汇总全部分析结果
type Report struct {
	ChatID        int64              `json:"chatId"`
	Year          int                `json:"year"`
	Overview      *Overview          `json:"overview"`
	Persons       []*PersonStat      `json:"persons"`
	Hourly        []*HourlyStat      `json:"hourly"`
	Daily         []*DailyStat       `json:"daily"`
	Weekday       []*WeekdayStat     `json:"weekday"`
	Monthly       []*MonthlyStat     `json:"monthly"`
	Emoji         *EmojiStats        `json:"emoji"`
	Words         *WordStats         `json:"words"`
	Starters      *StarterStats      `json:"starters"`
	SilentPeriods *SilentPeriodStats `json:"silentPeriods"`
	ResponseTimes *ResponseTimeStats `json:"responseTimes"`
	ThreadLengths *ThreadLengthStats `json:"threadLengths"`
	Repeats       []*RepeatStat      `json:"repeats"`
}
