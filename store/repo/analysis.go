package repo

import (
	"context"
	"os"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/types"
	"github.com/rs/zerolog/log"
)

// GetDataset 加载会话 (可选按年) 的消息与参与者，供统计使用
func (r *Repository) GetDataset(ctx context.Context, chatID int64, year int) (*analytics.Dataset, error) {
	if _, err := r.GetChat(ctx, chatID); err != nil {
		return nil, err
	}

	persons, err := r.GetPersons(ctx, chatID)
	if err != nil {
		return nil, err
	}
	msgs, err := r.GetMessages(ctx, types.MessageQuery{ChatID: chatID, Year: year})
	if err != nil {
		return nil, err
	}
	return analytics.NewDataset(msgs, persons), nil
}

// GetAnalysis 计算单项统计
func (r *Repository) GetAnalysis(ctx context.Context, chatID int64, year int, section analytics.Section, limit int) (interface{}, error) {
	ds, err := r.GetDataset(ctx, chatID, year)
	if err != nil {
		return nil, err
	}
	if section == analytics.SectionReport {
		return r.buildReport(ds, chatID, year, limit), nil
	}
	return analytics.Compute(ds, section, limit), nil
}

// GetReport 计算完整报告
func (r *Repository) GetReport(ctx context.Context, chatID int64, year int, limit int) (*model.Report, error) {
	ds, err := r.GetDataset(ctx, chatID, year)
	if err != nil {
		return nil, err
	}
	return r.buildReport(ds, chatID, year, limit), nil
}

func (r *Repository) buildReport(ds *analytics.Dataset, chatID int64, year int, limit int) *model.Report {
	report := analytics.Build(ds, limit)
	report.ChatID = chatID
	report.Year = year
	log.Debug().Int64("chat", chatID).Int("year", year).Int("messages", ds.Len()).Msg("统计报告已生成")
	return report
}

// GetStatus 数据库概况
func (r *Repository) GetStatus(ctx context.Context) (*model.StoreStatus, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	status := &model.StoreStatus{Path: r.dbPath}
	counts := []struct {
		table string
		dst   *int
	}{
		{"chats", &status.Chats},
		{"persons", &status.Persons},
		{"messages", &status.Messages},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	if info, err := os.Stat(r.dbPath); err == nil {
		status.DBSize = info.Size()
	}
	return status, nil
}
