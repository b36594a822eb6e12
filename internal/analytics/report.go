package analytics

import "github.com/afumu/watrace/internal/model"

// Section 报告中的单项统计
type Section string

const (
	SectionReport        Section = "report"
	SectionOverview      Section = "overview"
	SectionPersons       Section = "persons"
	SectionHourly        Section = "hourly"
	SectionDaily         Section = "daily"
	SectionWeekday       Section = "weekday"
	SectionMonthly       Section = "monthly"
	SectionEmoji         Section = "emoji"
	SectionWords         Section = "words"
	SectionStarters      Section = "starters"
	SectionThreads       Section = "threads"
	SectionThreadLengths Section = "thread_lengths"
	SectionSilent        Section = "silent_periods"
	SectionResponseTimes Section = "response_times"
	SectionRepeat        Section = "repeat"
)

// Sections 全部可单独查询的统计项
var Sections = []Section{
	SectionReport, SectionOverview, SectionPersons, SectionHourly, SectionDaily,
	SectionWeekday, SectionMonthly, SectionEmoji, SectionWords, SectionStarters,
	SectionThreads, SectionThreadLengths, SectionSilent, SectionResponseTimes, SectionRepeat,
}

// ParseSection 校验统计项名称
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Build 计算全部统计项
func Build(d *Dataset, limit int) *model.Report {
	return &model.Report{
		Overview:      Overview(d),
		Persons:       PersonStats(d),
		Hourly:        HourlyActivity(d),
		Daily:         DailyActivity(d),
		Weekday:       WeekdayActivity(d),
		Monthly:       MonthlyActivity(d),
		Emoji:         EmojiFrequency(d, limit),
		Words:         WordFrequency(d, limit),
		Starters:      ConversationStarters(d),
		SilentPeriods: SilentPeriods(d),
		ResponseTimes: ResponseTimes(d),
		ThreadLengths: ThreadLengths(d),
		Repeats:       RepeatAnalysis(d),
	}
}

// Compute 计算单个统计项，返回值可直接序列化
func Compute(d *Dataset, section Section, limit int) interface{} {
	switch section {
	case SectionOverview:
		return Overview(d)
	case SectionPersons:
		return PersonStats(d)
	case SectionHourly:
		return HourlyActivity(d)
	case SectionDaily:
		return DailyActivity(d)
	case SectionWeekday:
		return WeekdayActivity(d)
	case SectionMonthly:
		return MonthlyActivity(d)
	case SectionEmoji:
		return EmojiFrequency(d, limit)
	case SectionWords:
		return WordFrequency(d, limit)
	case SectionStarters:
		return ConversationStarters(d)
	case SectionThreads:
		return Segment(d)
	case SectionThreadLengths:
		return ThreadLengths(d)
	case SectionSilent:
		return SilentPeriods(d)
	case SectionResponseTimes:
		return ResponseTimes(d)
	case SectionRepeat:
		return RepeatAnalysis(d)
	default:
		return Build(d, limit)
	}
}
