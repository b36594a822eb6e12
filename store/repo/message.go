package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/types"
)

// GetMessages 按会话、年份、发送者与关键字查询消息，按时间排序
func (r *Repository) GetMessages(ctx context.Context, q types.MessageQuery) ([]*model.Message, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	var conds []string
	var args []interface{}
	if q.ChatID != 0 {
		conds = append(conds, "chat_id = ?")
		args = append(args, q.ChatID)
	}
	if q.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, q.Year)
	}
	if q.PersonID != 0 {
		conds = append(conds, "person_id = ?")
		args = append(args, q.PersonID)
	}
	if q.Keyword != "" {
		conds = append(conds, "text LIKE ?")
		args = append(args, "%"+q.Keyword+"%")
	}

	query := "SELECT id, person_id, chat_id, year, date, time, ts, kind, text FROM messages"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if q.Reverse {
		query += " ORDER BY ts DESC, id DESC"
	} else {
		query += " ORDER BY ts ASC, id ASC"
	}
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询消息失败: %w", err)
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		var m model.Message
		var ts int64
		var kind string
		if err := rows.Scan(&m.ID, &m.PersonID, &m.ChatID, &m.Year, &m.Date, &m.Time, &ts, &kind, &m.Text); err != nil {
			return nil, err
		}
		m.Timestamp = time.Unix(ts, 0).UTC()
		m.Kind = model.MessageKind(kind)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// GetPersons 会话的参与者，按首次出现顺序
func (r *Repository) GetPersons(ctx context.Context, chatID int64) ([]*model.Participant, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, chat_id, name, ordinal FROM persons WHERE chat_id = ? ORDER BY ordinal", chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := []*model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.ChatID, &p.Name, &p.Ordinal); err != nil {
			return nil, err
		}
		persons = append(persons, &p)
	}
	return persons, rows.Err()
}

// GetYears 会话中出现过的年份
func (r *Repository) GetYears(ctx context.Context, chatID int64) ([]int, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT DISTINCT year FROM messages WHERE chat_id = ? ORDER BY year", chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
