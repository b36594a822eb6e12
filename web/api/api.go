package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/store"
	"github.com/afumu/watrace/web/export"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// API 封装了 API 处理器所需的所有依赖。
type API struct {
	Store     store.Store
	Ingest    *ingest.Service
	Export    *export.Service
	Workspace *workspace.Machine
	Password  *PasswordManager
	Conf      *Config
}

// Config API 相关配置
type Config struct {
	MaxUploadBytes int64
}

// NewAPI 创建一个新的 API 处理器。
func NewAPI(s store.Store, in *ingest.Service, ws *workspace.Machine, conf *Config) *API {
	if conf == nil {
		conf = &Config{}
	}
	if conf.MaxUploadBytes <= 0 {
		conf.MaxUploadBytes = importer.DefaultMaxBytes
	}
	if ws == nil {
		ws = workspace.NewMachine()
	}
	return &API{
		Store:     s,
		Ingest:    in,
		Export:    export.NewService(s),
		Workspace: ws,
		Password:  NewPasswordManager(),
		Conf:      conf,
	}
}

// statusOf 把领域错误映射为 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrChatNotFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrNoMessages),
		errors.Is(err, importer.ErrUnsupportedFileType),
		errors.Is(err, importer.ErrNoTextFileFound),
		errors.Is(err, importer.ErrDecodeFailed):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// fail 记录并返回错误，5xx 时隐藏内部细节
func fail(c *gin.Context, err error, msg string) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
		transport.InternalServerError(c, msg)
		return
	}
	transport.SendError(c, status, err.Error())
}

// chatID 读取路径中的会话编号
func chatID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		transport.BadRequest(c, "无效的会话编号: "+c.Param("id"))
		return 0, false
	}
	return id, true
}

// yearFor 未指定年份时沿用工作区中该会话选中的年份
func (a *API) yearFor(c *gin.Context, id int64) (int, bool) {
	var q transport.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "无效的年份参数")
		return 0, false
	}
	if q.Year != nil {
		if *q.Year < 0 {
			transport.BadRequest(c, "无效的年份参数")
			return 0, false
		}
		return *q.Year, true
	}
	if sel, year, ok := a.Workspace.Selection(); ok && sel == id {
		return year, true
	}
	return 0, true
}
