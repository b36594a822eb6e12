package core

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SchemaVersion 当前表结构版本，记录在 PRAGMA user_version 中
const SchemaVersion = 1

var migrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS chats (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT    NOT NULL,
			source_name   TEXT    NOT NULL DEFAULT '',
			checksum      TEXT    NOT NULL UNIQUE,
			imported_at   INTEGER NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			skipped_lines INTEGER NOT NULL DEFAULT 0,
			raw           BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS persons (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			name    TEXT    NOT NULL,
			ordinal INTEGER NOT NULL,
			UNIQUE (chat_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			chat_id   INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			year      INTEGER NOT NULL,
			date      TEXT    NOT NULL,
			time      TEXT    NOT NULL,
			ts        INTEGER NOT NULL,
			kind      TEXT    NOT NULL,
			text      TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_person ON messages(person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_year ON messages(chat_id, year)`,
	},
}

// Migrate 按 user_version 逐级执行迁移
func Migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("读取表结构版本失败: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("数据库版本 %d 高于程序支持的版本 %d", version, SchemaVersion)
	}

	for v := version + 1; v <= SchemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("迁移到版本 %d 失败: %w", v, err)
			}
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Debug().Int("version", v).Msg("数据库表结构已迁移")
	}
	return nil
}
