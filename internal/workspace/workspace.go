// Package workspace 描述当前工作区所处的模式。
//
// 状态是一个带标签的变体 (Empty / Importing / Ready / Failed)，
// 只能通过下面的转换函数改变；不合法的转换返回 ErrInvalidTransition。
package workspace

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition 当前状态下不允许的操作
var ErrInvalidTransition = errors.New("当前状态不允许该操作")

// Kind 状态标签
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindImporting Kind = "importing"
	KindReady     Kind = "ready"
	KindFailed    Kind = "failed"
)

// State 工作区状态
type State interface {
	Kind() Kind
}

// Empty 尚未选中任何会话
type Empty struct{}

// Importing 正在导入
type Importing struct {
	Source string
	// Previous 导入前选中的会话，仅在导入进行中供 Selection 使用；导入失败进入 Failed，不回到该会话
	Previous *Ready
}

// Ready 已选中会话，Year 为 0 表示全部年份
type Ready struct {
	ChatID int64
	Year   int
}

// Failed 最近一次导入失败
type Failed struct {
	Source string
	Err    error
}

func (Empty) Kind() Kind     { return KindEmpty }
func (Importing) Kind() Kind { return KindImporting }
func (Ready) Kind() Kind     { return KindReady }
func (Failed) Kind() Kind    { return KindFailed }

func invalid(s State, op string) error {
	return fmt.Errorf("%s (%s): %w", op, s.Kind(), ErrInvalidTransition)
}

// BeginImport 开始导入；导入进行中时不允许再次开始
func BeginImport(s State, source string) (State, error) {
	switch st := s.(type) {
	case Empty, Failed:
		return Importing{Source: source}, nil
	case Ready:
		prev := st
		return Importing{Source: source, Previous: &prev}, nil
	default:
		return s, invalid(s, "BeginImport")
	}
}

// CompleteImport 导入成功，选中新会话并重置年份
func CompleteImport(s State, chatID int64) (State, error) {
	if _, ok := s.(Importing); !ok {
		return s, invalid(s, "CompleteImport")
	}
	return Ready{ChatID: chatID}, nil
}

// FailImport 导入失败
func FailImport(s State, err error) (State, error) {
	st, ok := s.(Importing)
	if !ok {
		return s, invalid(s, "FailImport")
	}
	return Failed{Source: st.Source, Err: err}, nil
}

// SelectChat 切换到已有会话
func SelectChat(s State, chatID int64) (State, error) {
	if _, ok := s.(Importing); ok {
		return s, invalid(s, "SelectChat")
	}
	return Ready{ChatID: chatID}, nil
}

// SelectYear 在已选中会话时切换年份
func SelectYear(s State, year int) (State, error) {
	st, ok := s.(Ready)
	if !ok {
		return s, invalid(s, "SelectYear")
	}
	st.Year = year
	return st, nil
}

// Reset 回到空状态 (例如清空数据后)
func Reset(State) State {
	return Empty{}
}

// Machine 并发安全地持有当前状态
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine 初始状态为 Empty
func NewMachine() *Machine {
	return &Machine{state: Empty{}}
}

// Current 当前状态
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply 以当前状态执行一次转换，成功时保存新状态
func (m *Machine) Apply(fn func(State) (State, error)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(m.state)
	if err != nil {
		return m.state, err
	}
	m.state = next
	return next, nil
}

// Selection 当前选中的会话与年份，未选中时 ok 为 false
func (m *Machine) Selection() (chatID int64, year int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch st := m.state.(type) {
	case Ready:
		return st.ChatID, st.Year, true
	case Importing:
		if st.Previous != nil {
			return st.Previous.ChatID, st.Previous.Year, true
		}
	}
	return 0, 0, false
}

// Snapshot 可序列化的状态描述
type Snapshot struct {
	State  Kind   `json:"state"`
	ChatID int64  `json:"chatId,omitempty"`
	Year   int    `json:"year,omitempty"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Describe 生成状态快照
func Describe(s State) Snapshot {
	snap := Snapshot{State: s.Kind()}
	switch st := s.(type) {
	case Importing:
		snap.Source = st.Source
	case Ready:
		snap.ChatID = st.ChatID
		snap.Year = st.Year
	case Failed:
		snap.Source = st.Source
		if st.Err != nil {
			snap.Error = st.Err.Error()
		}
	}
	return snap
}
