package api

import (
	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
)

// GetAnalysis 计算单项统计，section 为 report 时返回完整报告
func (a *API) GetAnalysis(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	section, ok := analytics.ParseSection(c.Param("section"))
	if !ok {
		transport.NotFound(c, "未知的统计项: "+c.Param("section"))
		return
	}
	year, ok := a.yearFor(c, id)
	if !ok {
		return
	}
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil || q.Limit < 0 {
		transport.BadRequest(c, "无效的 limit 参数")
		return
	}

	result, err := a.Store.GetAnalysis(c.Request.Context(), id, year, section, q.Limit)
	if err != nil {
		fail(c, err, "计算统计失败")
		return
	}
	transport.SendSuccess(c, result)
}
