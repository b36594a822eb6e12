package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/afumu/watrace/internal/analytics"
)

// CSV 导出聊天记录为 CSV 格式
func CSV(d *analytics.Dataset) ([]byte, error) {
	var buf bytes.Buffer

	// 写入 UTF-8 BOM，确保 Excel 正确识别编码
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(messageHeader); err != nil {
		return nil, fmt.Errorf("写入CSV表头失败: %w", err)
	}
	for _, row := range rows(d) {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("写入CSV数据失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV写入错误: %w", err)
	}
	return buf.Bytes(), nil
}
