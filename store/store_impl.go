package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/core"
	"github.com/afumu/watrace/store/repo"
	"github.com/afumu/watrace/store/types"
	"github.com/rs/zerolog/log"
)

// DBFileName 工作目录下的数据库文件名
const DBFileName = "watrace.db"

// DefaultStore 是 Store 接口的默认实现
type DefaultStore struct {
	pool *core.ConnectionPool
	repo *repo.Repository
}

// NewStore 在工作目录下打开 (或创建) 数据库
func NewStore(workDir string) (*DefaultStore, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建工作目录失败: %w", err)
	}

	pool := core.NewConnectionPool()
	dbPath := filepath.Join(workDir, DBFileName)

	// 启动时打开一次，尽早暴露文件或迁移问题
	if _, err := pool.GetConnection(dbPath); err != nil {
		pool.CloseAll()
		return nil, err
	}
	log.Info().Str("db", dbPath).Msg("数据库已就绪")

	return &DefaultStore{
		pool: pool,
		repo: repo.New(pool, dbPath),
	}, nil
}

func (s *DefaultStore) Close() error {
	return s.pool.CloseAll()
}

// --- 下面是 Store 接口的代理实现 ---

func (s *DefaultStore) ImportChat(ctx context.Context, batch *model.ImportBatch, opts types.ImportOptions) (*model.Chat, error) {
	return s.repo.ImportChat(ctx, batch, opts)
}

func (s *DefaultStore) GetChats(ctx context.Context) ([]*model.Chat, error) {
	return s.repo.GetChats(ctx)
}

func (s *DefaultStore) GetChat(ctx context.Context, id int64) (*model.Chat, error) {
	return s.repo.GetChat(ctx, id)
}

func (s *DefaultStore) GetRawExport(ctx context.Context, id int64) ([]byte, error) {
	return s.repo.GetRawExport(ctx, id)
}

func (s *DefaultStore) DeleteChat(ctx context.Context, id int64) error {
	return s.repo.DeleteChat(ctx, id)
}

func (s *DefaultStore) ClearAll(ctx context.Context) error {
	return s.repo.ClearAll(ctx)
}

func (s *DefaultStore) GetPersons(ctx context.Context, chatID int64) ([]*model.Participant, error) {
	return s.repo.GetPersons(ctx, chatID)
}

func (s *DefaultStore) GetMessages(ctx context.Context, query types.MessageQuery) ([]*model.Message, error) {
	return s.repo.GetMessages(ctx, query)
}

func (s *DefaultStore) GetYears(ctx context.Context, chatID int64) ([]int, error) {
	return s.repo.GetYears(ctx, chatID)
}

func (s *DefaultStore) GetDataset(ctx context.Context, chatID int64, year int) (*analytics.Dataset, error) {
	return s.repo.GetDataset(ctx, chatID, year)
}

func (s *DefaultStore) GetAnalysis(ctx context.Context, chatID int64, year int, section analytics.Section, limit int) (interface{}, error) {
	return s.repo.GetAnalysis(ctx, chatID, year, section, limit)
}

func (s *DefaultStore) GetReport(ctx context.Context, chatID int64, year int, limit int) (*model.Report, error) {
	return s.repo.GetReport(ctx, chatID, year, limit)
}

func (s *DefaultStore) GetStatus(ctx context.Context) (*model.StoreStatus, error) {
	return s.repo.GetStatus(ctx)
}
