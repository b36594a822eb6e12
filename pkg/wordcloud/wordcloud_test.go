package wordcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	words := Tokenize("Don’t forget: https://example.com/x?y=1 the PARTY tonight!!")
	assert.Equal(t, []string{"don't", "forget", "the", "party", "tonight"}, words)
}

func TestEmojis(t *testing.T) {
	assert.Equal(t, []string{"😀", "😀"}, Emojis("😀😀"))
	assert.Equal(t, []string{"👍🏽", "❤️"}, Emojis("ok 👍🏽 love ❤️"))
	assert.Equal(t, []string{"🇧🇷"}, Emojis("go 🇧🇷!"))
	assert.Empty(t, Emojis("plain text 123"))
}

func TestEmojis_VariationSelector(t *testing.T) {
	for _, e := range []string{"▶️", "↩️", "‼️", "©️", "Ⓜ️", "1️⃣"} {
		assert.Equal(t, []string{e}, Emojis("see "+e), e)
		assert.True(t, IsEmojiOnly(e), e)
	}
}

func TestEmojis_TextSymbols(t *testing.T) {
	for _, s := range []string{"✓", "★", "♪", "™", "ℹ", "#", "7"} {
		assert.Empty(t, Emojis("done "+s), s)
		assert.False(t, IsEmojiOnly(s), s)
	}
}

func TestIsEmojiOnly(t *testing.T) {
	assert.True(t, IsEmojiOnly("😀😀"))
	assert.True(t, IsEmojiOnly(" 😂 🙈 "))
	assert.False(t, IsEmojiOnly("haha 😂"))
	assert.False(t, IsEmojiOnly("   "))
}

func TestAnalyze(t *testing.T) {
	res := Analyze([]string{
		"Pizza tonight? pizza!",
		"that would be great pizza",
		"ok",
	}, 10)

	assert.Equal(t, 3, res.TotalMessages)
	assert.Equal(t, 9, res.TotalWords)
	if assert.Len(t, res.Words, 3) {
		assert.Equal(t, "pizza", res.Words[0].Text)
		assert.Equal(t, 3, res.Words[0].Count)
		assert.Equal(t, "great", res.Words[1].Text)
		assert.Equal(t, "tonight", res.Words[2].Text)
	}
}

func TestCountable(t *testing.T) {
	assert.False(t, Countable("cat"))
	assert.False(t, Countable("with"))
	assert.False(t, Countable("2024"))
	assert.True(t, Countable("café"))
}

func TestTop_Limit(t *testing.T) {
	items := Top(map[string]int{"a": 1, "b": 3, "c": 3}, 2)
	if assert.Len(t, items, 2) {
		assert.Equal(t, "b", items[0].Text)
		assert.Equal(t, "c", items[1].Text)
	}
}
