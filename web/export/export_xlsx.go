package export

import (
	"bytes"
	"fmt"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/xuri/excelize/v2"
)

const (
	messageSheet = "消息"
	personSheet  = "参与者"
)

// XLSX 导出聊天记录为 XLSX，包含消息与参与者统计两个工作表
func XLSX(chatName string, d *analytics.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", messageSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(personSheet); err != nil {
		return nil, err
	}
	f.SetDocProps(&excelize.DocProperties{Title: chatName})

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	if err := f.SetSheetRow(messageSheet, "A1", &messageHeader); err != nil {
		return nil, err
	}
	f.SetCellStyle(messageSheet, "A1", "E1", headerStyle)
	f.SetColWidth(messageSheet, "A", "A", 18)
	f.SetColWidth(messageSheet, "B", "B", 16)
	f.SetColWidth(messageSheet, "C", "D", 10)
	f.SetColWidth(messageSheet, "E", "E", 60)

	for i, row := range rows(d) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(messageSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	header := []interface{}{"编号", "名称", "消息数", "词数", "字符数", "媒体", "表情", "链接", "撤回", "占比"}
	if err := f.SetSheetRow(personSheet, "A1", &header); err != nil {
		return nil, err
	}
	f.SetCellStyle(personSheet, "A1", "J1", headerStyle)
	f.SetColWidth(personSheet, "B", "B", 16)
	for i, p := range analytics.PersonStats(d) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{p.PersonID, p.Name, p.Messages, p.Words, p.Characters, p.Media, p.Emojis, p.Links, p.Deleted, p.Share}
		if err := f.SetSheetRow(personSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("写入XLSX失败: %w", err)
	}
	return buf.Bytes(), nil
}
