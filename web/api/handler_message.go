package api

import (
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/store/types"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
)

// MessageRequest 消息查询参数
type MessageRequest struct {
	PersonID int64 `form:"person_id"`
	Reverse  bool  `form:"reverse"` // 是否倒序
	transport.KeywordQuery
	transport.PaginationQuery
}

// maxPageSize 单次最多返回的消息数
const maxPageSize = 1000

// GetMessages 分页查询会话消息
func (a *API) GetMessages(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		transport.BadRequest(c, "无效的消息查询参数: "+err.Error())
		return
	}
	if req.Limit <= 0 || req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	year, ok := a.yearFor(c, id)
	if !ok {
		return
	}

	if _, err := a.Store.GetChat(c.Request.Context(), id); err != nil {
		fail(c, err, "获取会话失败")
		return
	}

	messages, err := a.Store.GetMessages(c.Request.Context(), types.MessageQuery{
		ChatID:   id,
		Year:     year,
		PersonID: req.PersonID,
		Keyword:  req.Keyword,
		Limit:    req.Limit,
		Offset:   req.Offset,
		Reverse:  req.Reverse,
	})
	if err != nil {
		fail(c, err, "获取消息失败")
		return
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	transport.SendSuccess(c, messages)
}

// GetPersons 会话参与者，按首次出现顺序
func (a *API) GetPersons(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	if _, err := a.Store.GetChat(c.Request.Context(), id); err != nil {
		fail(c, err, "获取会话失败")
		return
	}
	persons, err := a.Store.GetPersons(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "获取参与者失败")
		return
	}
	if persons == nil {
		persons = []*model.Participant{}
	}
	transport.SendSuccess(c, persons)
}

// GetYears 会话中出现过的年份
func (a *API) GetYears(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	if _, err := a.Store.GetChat(c.Request.Context(), id); err != nil {
		fail(c, err, "获取会话失败")
		return
	}
	years, err := a.Store.GetYears(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "获取年份失败")
		return
	}
	if years == nil {
		years = []int{}
	}
	transport.SendSuccess(c, years)
}
