package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/internal/parser"
	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ImportChat 上传并导入一个导出文件 (multipart 字段 "file")
func (a *API) ImportChat(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		transport.BadRequest(c, "缺少上传文件 file")
		return
	}
	if fh.Size > a.Conf.MaxUploadBytes {
		transport.SendError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("上传文件过大: %d 字节", fh.Size))
		return
	}

	opts := a.Ingest.Defaults()
	if !bindBool(c, "replace_all", &opts.ReplaceAll) {
		return
	}
	join := opts.Parser.Continuation == parser.JoinContinuation
	if !bindBool(c, "join_continuations", &join) {
		return
	}
	opts.Parser.Continuation = continuation(join)

	if _, err := a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		return workspace.BeginImport(s, fh.Filename)
	}); err != nil {
		fail(c, err, "开始导入失败")
		return
	}

	res, err := a.importUpload(c, fh, opts)
	if err != nil {
		a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
			return workspace.FailImport(s, err)
		})
		fail(c, err, "导入聊天记录失败")
		return
	}

	a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		return workspace.CompleteImport(s, res.Chat.ID)
	})
	transport.SendSuccess(c, res)
}

func (a *API) importUpload(c *gin.Context, fh *multipart.FileHeader, opts ingest.Options) (*model.ImportResult, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.Ingest.Import(c.Request.Context(), fh.Filename, f, opts)
}

// GetChats 列出全部会话
func (a *API) GetChats(c *gin.Context) {
	chats, err := a.Store.GetChats(c.Request.Context())
	if err != nil {
		fail(c, err, "获取会话列表失败")
		return
	}
	if chats == nil {
		chats = []*model.Chat{}
	}
	transport.SendSuccess(c, chats)
}

// GetChat 获取单个会话
func (a *API) GetChat(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	chat, err := a.Store.GetChat(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "获取会话失败")
		return
	}
	transport.SendSuccess(c, chat)
}

// DeleteChat 删除会话，若其正被选中则工作区回到空状态
func (a *API) DeleteChat(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	if err := a.Store.DeleteChat(c.Request.Context(), id); err != nil {
		fail(c, err, "删除会话失败")
		return
	}

	a.Workspace.Apply(func(s workspace.State) (workspace.State, error) {
		if r, ok := s.(workspace.Ready); ok && r.ChatID == id {
			return workspace.Reset(s), nil
		}
		return s, nil
	})
	log.Info().Int64("chat", id).Msg("会话已删除")
	transport.SendSuccess(c, gin.H{"status": "deleted"})
}

// ReparseRequest 重新解析的选项，未给出的字段沿用默认配置
type ReparseRequest struct {
	JoinContinuations *bool `json:"join_continuations"`
	DayFirst          *bool `json:"day_first"`
}

// ReparseChat 用新的解析选项重新解析已保存的原始导出
func (a *API) ReparseChat(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	var req ReparseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			transport.BadRequest(c, "参数错误")
			return
		}
	}

	opts := a.Ingest.Defaults().Parser
	if req.JoinContinuations != nil {
		opts.Continuation = continuation(*req.JoinContinuations)
	}
	if req.DayFirst != nil {
		opts.DayFirst = *req.DayFirst
	}

	res, err := a.Ingest.Reparse(c.Request.Context(), id, opts)
	if err != nil {
		fail(c, err, "重新解析失败")
		return
	}
	transport.SendSuccess(c, res)
}

func continuation(join bool) parser.ContinuationPolicy {
	if join {
		return parser.JoinContinuation
	}
	return parser.DropContinuation
}

// bindBool 读取可选的布尔查询参数，格式错误时直接返回 400
func bindBool(c *gin.Context, key string, dst *bool) bool {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		transport.BadRequest(c, fmt.Sprintf("参数 %s 必须是布尔值", key))
		return false
	}
	*dst = b
	return true
}
