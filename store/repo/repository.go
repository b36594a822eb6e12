package repo

import (
	"database/sql"
	"errors"

	"github.com/afumu/watrace/store/core"
)

// ErrChatNotFound 会话不存在
var ErrChatNotFound = errors.New("会话不存在")

// Repository 是数据访问层的入口，持有连接池与数据库文件路径
type Repository struct {
	pool   *core.ConnectionPool
	dbPath string
}

// New 创建一个新的 Repository
func New(pool *core.ConnectionPool, dbPath string) *Repository {
	return &Repository{
		pool:   pool,
		dbPath: dbPath,
	}
}

// Path 数据库文件路径
func (r *Repository) Path() string {
	return r.dbPath
}

func (r *Repository) db() (*sql.DB, error) {
	return r.pool.GetConnection(r.dbPath)
}
