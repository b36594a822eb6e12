package export

import (
	"bytes"
	"fmt"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DOCX 导出聊天记录为 DOCX 格式，按日期分段
func DOCX(chatName string, d *analytics.Dataset) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("创建DOCX文档失败: %w", err)
	}
	defer doc.Close()

	doc.AddHeading(chatName+" 的聊天记录", 1)
	for _, p := range analytics.PersonStats(d) {
		doc.AddParagraph(fmt.Sprintf("%s: %d 条消息 (%.1f%%)", p.Name, p.Messages, p.Share*100))
	}
	doc.AddEmptyParagraph()

	writeMessages(doc, d)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("写入DOCX失败: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMessages(doc *docx.RootDoc, d *analytics.Dataset) {
	currentDate := ""
	for _, m := range d.Messages {
		date := m.Timestamp.Format("2006-01-02")
		if date != currentDate {
			currentDate = date
			doc.AddEmptyParagraph()
			doc.AddHeading(date, 2)
		}
		doc.AddParagraph(fmt.Sprintf("[%s] %s\n%s", d.Name(m.PersonID), m.Time, m.Text))
	}
}
