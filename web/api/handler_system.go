package api

import (
	"fmt"

	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GetSystemStatus 返回数据库概况与当前工作区状态
func (a *API) GetSystemStatus(c *gin.Context) {
	status, err := a.Store.GetStatus(c.Request.Context())
	if err != nil {
		fail(c, err, "获取系统状态失败")
		return
	}
	transport.SendSuccess(c, gin.H{
		"store":     status,
		"workspace": workspace.Describe(a.Workspace.Current()),
	})
}

// GetWorkspace 当前工作区状态
func (a *API) GetWorkspace(c *gin.Context) {
	transport.SendSuccess(c, workspace.Describe(a.Workspace.Current()))
}

// SelectChat 切换当前会话
func (a *API) SelectChat(c *gin.Context) {
	var req struct {
		ChatID int64 `json:"chat_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	if _, err := a.Store.GetChat(c.Request.Context(), req.ChatID); err != nil {
		fail(c, err, "获取会话失败")
		return
	}

	s, err := a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		return workspace.SelectChat(s, req.ChatID)
	})
	if err != nil {
		fail(c, err, "切换会话失败")
		return
	}
	transport.SendSuccess(c, workspace.Describe(s))
}

// SelectYear 切换当前会话的年份，0 表示全部年份
func (a *API) SelectYear(c *gin.Context) {
	var req struct {
		Year *int `json:"year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}

	if *req.Year != 0 {
		id, _, ok := a.Workspace.Selection()
		if !ok {
			fail(c, fmt.Errorf("未选中会话: %w", workspace.ErrInvalidTransition), "切换年份失败")
			return
		}
		years, err := a.Store.GetYears(c.Request.Context(), id)
		if err != nil {
			fail(c, err, "获取年份失败")
			return
		}
		if !containsYear(years, *req.Year) {
			transport.BadRequest(c, fmt.Sprintf("会话中没有 %d 年的消息", *req.Year))
			return
		}
	}

	s, err := a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		return workspace.SelectYear(s, *req.Year)
	})
	if err != nil {
		fail(c, err, "切换年份失败")
		return
	}
	transport.SendSuccess(c, workspace.Describe(s))
}

// ClearData 清空全部会话并重置工作区
func (a *API) ClearData(c *gin.Context) {
	if err := a.Store.ClearAll(c.Request.Context()); err != nil {
		fail(c, err, "清空数据失败")
		return
	}
	a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		return workspace.Reset(s), nil
	})
	log.Info().Msg("全部数据已清空")
	transport.SendSuccess(c, gin.H{"status": "cleared"})
}

func containsYear(years []int, y int) bool {
	for _, v := range years {
		if v == y {
			return true
		}
	}
	return false
}
