package workspace

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions_HappyPath(t *testing.T) {
	var s State = Empty{}

	s, err := BeginImport(s, "chat.txt")
	require.NoError(t, err)
	assert.Equal(t, KindImporting, s.Kind())

	s, err = CompleteImport(s, 7)
	require.NoError(t, err)
	assert.Equal(t, Ready{ChatID: 7}, s)

	s, err = SelectYear(s, 2024)
	require.NoError(t, err)
	assert.Equal(t, Ready{ChatID: 7, Year: 2024}, s)

	s, err = SelectChat(s, 8)
	require.NoError(t, err)
	assert.Equal(t, Ready{ChatID: 8}, s)

	assert.Equal(t, Empty{}, Reset(s))
}

func TestTransitions_Invalid(t *testing.T) {
	importing := Importing{Source: "a.zip"}

	cases := []struct {
		name string
		fn   func() (State, error)
	}{
		{"begin twice", func() (State, error) { return BeginImport(importing, "b.zip") }},
		{"complete without import", func() (State, error) { return CompleteImport(Empty{}, 1) }},
		{"fail without import", func() (State, error) { return FailImport(Ready{ChatID: 1}, errors.New("x")) }},
		{"year without chat", func() (State, error) { return SelectYear(Empty{}, 2024) }},
		{"select during import", func() (State, error) { return SelectChat(importing, 3) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestFailImport(t *testing.T) {
	s, err := BeginImport(Ready{ChatID: 2, Year: 2023}, "bad.zip")
	require.NoError(t, err)

	s, err = FailImport(s, errors.New("压缩包中没有文本文件"))
	require.NoError(t, err)
	snap := Describe(s)
	assert.Equal(t, KindFailed, snap.State)
	assert.Equal(t, "bad.zip", snap.Source)
	assert.Contains(t, snap.Error, "文本文件")

	// 失败后可以重新导入
	_, err = BeginImport(s, "good.zip")
	assert.NoError(t, err)
}

func TestMachine_FailDropsPreviousSelection(t *testing.T) {
	m := NewMachine()
	_, err := m.Apply(func(s State) (State, error) { return SelectChat(s, 3) })
	require.NoError(t, err)
	_, err = m.Apply(func(s State) (State, error) { return BeginImport(s, "bad.txt") })
	require.NoError(t, err)

	cur, err := m.Apply(func(s State) (State, error) { return FailImport(s, errors.New("boom")) })
	require.NoError(t, err)
	assert.Equal(t, KindFailed, cur.Kind())
	assert.Zero(t, Describe(cur).ChatID)

	_, _, ok := m.Selection()
	assert.False(t, ok)
}

func TestMachine(t *testing.T) {
	m := NewMachine()
	_, _, ok := m.Selection()
	assert.False(t, ok)

	_, err := m.Apply(func(s State) (State, error) { return SelectChat(s, 5) })
	require.NoError(t, err)
	_, err = m.Apply(func(s State) (State, error) { return BeginImport(s, "x.txt") })
	require.NoError(t, err)

	// 导入期间仍沿用之前选中的会话
	id, year, ok := m.Selection()
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
	assert.Zero(t, year)

	cur, err := m.Apply(func(s State) (State, error) { return BeginImport(s, "y.txt") })
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, KindImporting, cur.Kind())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Current()
		}()
	}
	wg.Wait()

	_, err = m.Apply(func(s State) (State, error) { return CompleteImport(s, 6) })
	require.NoError(t, err)
	assert.Equal(t, Snapshot{State: KindReady, ChatID: 6}, Describe(m.Current()))
}
