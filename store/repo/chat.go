package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/types"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

var (
	rawEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	rawDecoder, _ = zstd.NewReader(nil)
)

const chatColumns = "id, name, source_name, checksum, imported_at, message_count, skipped_lines"

// ImportChat 在一个事务中写入会话、参与者与消息。
// batch 中的参与者编号为花名册序号，写入后换成数据库主键。
func (r *Repository) ImportChat(ctx context.Context, batch *model.ImportBatch, opts types.ImportOptions) (*model.Chat, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	chat := batch.Chat
	if chat.ImportedAt.IsZero() {
		chat.ImportedAt = time.Now()
	}
	chat.MessageCount = len(batch.Messages)
	raw := rawEncoder.EncodeAll(batch.Raw, nil)

	if opts.ReplaceAll {
		if err := clearTables(ctx, tx); err != nil {
			return nil, err
		}
	}

	// 同一份导出再次导入时沿用原会话编号
	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM chats WHERE checksum = ?", chat.Checksum).Scan(&existing)
	switch {
	case err == nil:
		if err := deleteChatRows(ctx, tx, existing, false); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE chats SET name = ?, source_name = ?, imported_at = ?, message_count = ?, skipped_lines = ?, raw = ? WHERE id = ?",
			chat.Name, chat.SourceName, chat.ImportedAt.Unix(), chat.MessageCount, chat.SkippedLines, raw, existing)
		if err != nil {
			return nil, fmt.Errorf("更新会话失败: %w", err)
		}
		chat.ID = existing
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chats (name, source_name, checksum, imported_at, message_count, skipped_lines, raw) VALUES (?, ?, ?, ?, ?, ?, ?)",
			chat.Name, chat.SourceName, chat.Checksum, chat.ImportedAt.Unix(), chat.MessageCount, chat.SkippedLines, raw)
		if err != nil {
			return nil, fmt.Errorf("写入会话失败: %w", err)
		}
		if chat.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	personIDs, err := insertPersons(ctx, tx, chat.ID, batch.Participants)
	if err != nil {
		return nil, err
	}
	if err := insertMessages(ctx, tx, chat.ID, personIDs, batch.Messages); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交导入事务失败: %w", err)
	}

	log.Debug().Int64("chat", chat.ID).Int("persons", len(personIDs)).Int("messages", chat.MessageCount).Msg("会话已写入")
	chat.ImportedAt = time.Unix(chat.ImportedAt.Unix(), 0)
	return &chat, nil
}

func insertPersons(ctx context.Context, tx *sql.Tx, chatID int64, persons []*model.Participant) (map[int64]int64, error) {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO persons (chat_id, name, ordinal) VALUES (?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make(map[int64]int64, len(persons))
	for _, p := range persons {
		res, err := stmt.ExecContext(ctx, chatID, p.Name, p.Ordinal)
		if err != nil {
			return nil, fmt.Errorf("写入参与者 %s 失败: %w", p.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[p.ID] = id
	}
	return ids, nil
}

func insertMessages(ctx context.Context, tx *sql.Tx, chatID int64, personIDs map[int64]int64, msgs []*model.Message) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (person_id, chat_id, year, date, time, ts, kind, text) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range msgs {
		pid, ok := personIDs[m.PersonID]
		if !ok {
			return fmt.Errorf("第 %d 条消息引用了未知参与者 %d", i+1, m.PersonID)
		}
		_, err := stmt.ExecContext(ctx, pid, chatID, m.Timestamp.Year(), m.Date, m.Time, m.Timestamp.Unix(), string(m.Kind), m.Text)
		if err != nil {
			return fmt.Errorf("写入第 %d 条消息失败: %w", i+1, err)
		}
	}
	return nil
}

// GetChats 全部会话，最近导入的在前
func (r *Repository) GetChats(ctx context.Context) ([]*model.Chat, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+chatColumns+" FROM chats ORDER BY imported_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []*model.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetChat 按编号查询会话
func (r *Repository) GetChat(ctx context.Context, id int64) (*model.Chat, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	c, err := scanChat(db.QueryRowContext(ctx, "SELECT "+chatColumns+" FROM chats WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	return c, err
}

// GetRawExport 取回导入时保存的原始文本
func (r *Repository) GetRawExport(ctx context.Context, id int64) ([]byte, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = db.QueryRowContext(ctx, "SELECT raw FROM chats WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	text, err := rawDecoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("解压原始导出失败: %w", err)
	}
	return text, nil
}

// DeleteChat 删除会话及其参与者与消息
func (r *Repository) DeleteChat(ctx context.Context, id int64) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM chats WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrChatNotFound
		}
		return err
	}
	if err := deleteChatRows(ctx, tx, id, true); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearAll 清空全部数据
func (r *Repository) ClearAll(ctx context.Context) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"messages", "persons", "chats"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("清空 %s 失败: %w", table, err)
		}
	}
	return nil
}

func deleteChatRows(ctx context.Context, tx *sql.Tx, chatID int64, withChat bool) error {
	stmts := []string{
		"DELETE FROM messages WHERE chat_id = ?",
		"DELETE FROM persons WHERE chat_id = ?",
	}
	if withChat {
		stmts = append(stmts, "DELETE FROM chats WHERE id = ?")
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s, chatID); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChat(s scanner) (*model.Chat, error) {
	var c model.Chat
	var importedAt int64
	if err := s.Scan(&c.ID, &c.Name, &c.SourceName, &c.Checksum, &importedAt, &c.MessageCount, &c.SkippedLines); err != nil {
		return nil, err
	}
	c.ImportedAt = time.Unix(importedAt, 0)
	return &c, nil
}
