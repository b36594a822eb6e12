package store

import (
	"context"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/repo"
	"github.com/afumu/watrace/store/types"
)

// ErrChatNotFound 会话不存在
var ErrChatNotFound = repo.ErrChatNotFound

// Store 定义了数据访问的统一接口。
// 启动时创建一次，显式传递给所有使用者。
type Store interface {
	// 导入与会话
	ImportChat(ctx context.Context, batch *model.ImportBatch, opts types.ImportOptions) (*model.Chat, error)
	GetChats(ctx context.Context) ([]*model.Chat, error)
	GetChat(ctx context.Context, id int64) (*model.Chat, error)
	GetRawExport(ctx context.Context, id int64) ([]byte, error)
	DeleteChat(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error

	// 参与者与消息
	GetPersons(ctx context.Context, chatID int64) ([]*model.Participant, error)
	GetMessages(ctx context.Context, query types.MessageQuery) ([]*model.Message, error)
	GetYears(ctx context.Context, chatID int64) ([]int, error)

	// 分析操作
	GetDataset(ctx context.Context, chatID int64, year int) (*analytics.Dataset, error)
	GetAnalysis(ctx context.Context, chatID int64, year int, section analytics.Section, limit int) (interface{}, error)
	GetReport(ctx context.Context, chatID int64, year int, limit int) (*model.Report, error)

	GetStatus(ctx context.Context) (*model.StoreStatus, error)

	// 生命周期管理
	Close() error
}
