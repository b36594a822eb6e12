package parser

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `1/1/2024, 09:59 - Messages and calls are end-to-end encrypted. No one outside of this chat can read them.
1/1/2024, 10:00 - Alice: Happy new year!
1/1/2024, 10:05 - Bob: Same to you
and many more
1/1/2024, 16:00 - Alice: <Media omitted>

31/2/2024, 10:00 - Bob: impossible date
2/1/2024, 08:15 - Bob: morning: coffee?
`

func TestParse_StrictPolicy(t *testing.T) {
	res := New(DefaultOptions()).Parse(export)

	require.Equal(t, 4, res.Parsed())
	assert.Equal(t, "Alice", res.Messages[0].Sender)
	assert.Equal(t, "1/1/2024", res.Messages[0].Date)
	assert.Equal(t, "10:00", res.Messages[0].Time)
	assert.Equal(t, "Happy new year!", res.Messages[0].Text)
	assert.Equal(t, 2, res.Messages[0].Line)

	assert.Equal(t, "Same to you", res.Messages[1].Text)
	assert.Equal(t, "<Media omitted>", res.Messages[2].Text)
	assert.Equal(t, "morning: coffee?", res.Messages[3].Text)
	assert.Equal(t, "2/1/2024", res.Messages[3].Date)

	assert.Equal(t, 1, res.Skipped[NoSenderSeparator])
	assert.Equal(t, 1, res.Skipped[NoDatePrefix])
	assert.Equal(t, 1, res.Skipped[Blank])
	assert.Equal(t, 1, res.Skipped[InvalidDate])
	assert.Equal(t, 4, res.SkippedCount())
	assert.Len(t, res.Lines, 8)
	assert.Equal(t, []string{"Alice", "Bob", "Alice", "Bob"}, res.Senders())
}

func TestParse_JoinPolicy(t *testing.T) {
	res := New(Options{Continuation: JoinContinuation, DayFirst: true}).Parse(export)

	require.Equal(t, 4, res.Parsed())
	assert.Equal(t, "Same to you\nand many more", res.Messages[1].Text)
	assert.Equal(t, "<Media omitted>\n", res.Messages[2].Text)
	assert.Equal(t, 2, res.Skipped[Continuation])
	assert.Zero(t, res.Skipped[NoDatePrefix])
}

func TestParse_JoinAfterSkippedDatedLine(t *testing.T) {
	text := "1/1/2024, 10:00 - Alice: hi\n" +
		"1/1/2024, 10:01 - Bob changed the group icon\n" +
		"stray line\n" +
		"1/1/2024, 25:00 - Bob: bad clock\n" +
		"another stray"
	res := New(Options{Continuation: JoinContinuation, DayFirst: true}).Parse(text)

	require.Equal(t, 1, res.Parsed())
	assert.Equal(t, "hi", res.Messages[0].Text)
	assert.Zero(t, res.Skipped[Continuation])
	assert.Equal(t, 2, res.Skipped[NoDatePrefix])
	assert.Equal(t, 1, res.Skipped[NoSenderSeparator])
	assert.Equal(t, 1, res.Skipped[InvalidDate])
}

// 解析出的消息数应等于匹配 "日期, 时间 - 发送者: " 的行数
func TestParse_CountConservation(t *testing.T) {
	full := regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}, \d{2}:\d{2} - [^:]+: `)
	lines := []string{
		"3/4/2023, 12:00 - Ann: a",
		"garbage",
		"3/4/2023, 12:01 - Ann joined using this group's invite link",
		"3/4/2023, 12:02 - Ben: b",
		"",
		"4/4/2023, 23:59 - Ann: c",
	}
	expected := 0
	for _, l := range lines {
		if full.MatchString(l) {
			expected++
		}
	}

	res := New(DefaultOptions()).Parse(strings.Join(lines, "\n"))
	assert.Equal(t, expected, res.Parsed())
	assert.Equal(t, len(lines)-expected, res.SkippedCount())
}

func TestParseLine_Formats(t *testing.T) {
	p := New(DefaultOptions())

	cases := []struct {
		line   string
		date   string
		clock  string
		sender string
	}{
		{"5/6/24, 9:07 - Ann: two digit year", "5/6/2024", "09:07", "Ann"},
		{"5/6/2024, 9:07 pm - Ann: twelve hour", "5/6/2024", "21:07", "Ann"},
		{"5/6/2024, 12:30 a.m. - Ann: midnight", "5/6/2024", "00:30", "Ann"},
		{"05/06/2024 09:07 - Ann Lee: no comma", "5/6/2024", "09:07", "Ann Lee"},
		{"5/6/2024, 9:07\u202fPM - Ann: narrow space", "5/6/2024", "21:07", "Ann"},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			msg, reason := p.ParseLine(invisibles.Replace(tc.line))
			require.NotNil(t, msg, "reason: %s", reason)
			assert.Equal(t, tc.date, msg.Date)
			assert.Equal(t, tc.clock, msg.Time)
			assert.Equal(t, tc.sender, msg.Sender)
		})
	}
}

func TestParseLine_SenderVerbatim(t *testing.T) {
	p := New(DefaultOptions())
	msg, _ := p.ParseLine("1/1/2024, 10:00 - Ann : spaced")
	require.NotNil(t, msg)
	assert.Equal(t, "Ann ", msg.Sender)
	assert.Equal(t, "spaced", msg.Text)
}

func TestParseLine_MonthFirst(t *testing.T) {
	p := New(Options{DayFirst: false})
	msg, _ := p.ParseLine("12/31/2023, 23:00 - Ann: nye")
	require.NotNil(t, msg)
	assert.Equal(t, "31/12/2023", msg.Date)

	_, reason := New(DefaultOptions()).ParseLine("12/31/2023, 23:00 - Ann: nye")
	assert.Equal(t, InvalidDate, reason)
}

func TestParseLine_Rejects(t *testing.T) {
	p := New(DefaultOptions())

	_, reason := p.ParseLine("   ")
	assert.Equal(t, Blank, reason)
	_, reason = p.ParseLine("1/1/2024, 10:00 Alice: missing dash")
	assert.Equal(t, NoDatePrefix, reason)
	_, reason = p.ParseLine("1/1/2024, 10:00 - Alice changed the group description")
	assert.Equal(t, NoSenderSeparator, reason)
	_, reason = p.ParseLine("1/1/2024, 25:00 - Alice: late")
	assert.Equal(t, InvalidDate, reason)
	_, reason = p.ParseLine("1/13/2024, 10:00 - Alice: month")
	assert.Equal(t, InvalidDate, reason)
}
