package api

import (
	"github.com/afumu/watrace/web/export"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ExportChat 以附件形式导出会话 (?format=csv|xlsx|docx|txt&year=)
func (a *API) ExportChat(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	format, ok := export.ParseFormat(c.Query("format"))
	if !ok {
		transport.BadRequest(c, "不支持的导出格式: "+c.Query("format"))
		return
	}
	year, ok := a.yearFor(c, id)
	if !ok {
		return
	}

	file, err := a.Export.Export(c.Request.Context(), id, year, format)
	if err != nil {
		fail(c, err, "导出失败")
		return
	}
	log.Info().Int64("chat", id).Str("file", file.Name).Int("size", len(file.Data)).Msg("导出完成")
	transport.SendFile(c, file.Name, file.ContentType, file.Data)
}
