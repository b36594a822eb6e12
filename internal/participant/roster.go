// Package participant 为解析出的发送者分配稳定的编号。
package participant

import "github.com/afumu/watrace/internal/model"

// Roster 按首次出现顺序去重后的发送者名单
type Roster struct {
	names []string
	ids   map[string]int64
}

// Resolve 依次登记发送者，编号从 1 开始，按首次出现的顺序分配
func Resolve(names []string) *Roster {
	r := &Roster{ids: make(map[string]int64)}
	for _, n := range names {
		r.Add(n)
	}
	return r
}

// Add 登记一个发送者并返回其编号；已存在时返回原编号
func (r *Roster) Add(name string) int64 {
	if id, ok := r.ids[name]; ok {
		return id
	}
	r.names = append(r.names, name)
	id := int64(len(r.names))
	r.ids[name] = id
	return id
}

// ID 查询发送者编号
func (r *Roster) ID(name string) (int64, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Names 按编号顺序返回全部发送者
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len 参与者数量
func (r *Roster) Len() int {
	return len(r.names)
}

// Participants 生成属于 chatID 的参与者列表，ID 即花名册编号
func (r *Roster) Participants(chatID int64) []*model.Participant {
	out := make([]*model.Participant, 0, len(r.names))
	for i, n := range r.names {
		out = append(out, &model.Participant{
			ID:      int64(i + 1),
			ChatID:  chatID,
			Name:    n,
			Ordinal: i + 1,
		})
	}
	return out
}
