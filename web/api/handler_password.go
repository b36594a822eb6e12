package api

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/afumu/watrace/internal/config"
	"github.com/afumu/watrace/web/transport"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// sessionTTL 与 auth_token cookie 的有效期一致
const sessionTTL = 24 * time.Hour

// PasswordManager 管理已解锁的会话
type PasswordManager struct {
	mu       sync.Mutex
	sessions map[string]time.Time // token -> 过期时间
	now      func() time.Time
}

// NewPasswordManager 创建密码管理器
func NewPasswordManager() *PasswordManager {
	return &PasswordManager{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// generateToken 生成随机 token
func (pm *PasswordManager) generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AddSession 添加已验证的会话
func (pm *PasswordManager) AddSession(token string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.sessions[token] = pm.now().Add(sessionTTL)
}

// IsValidSession 检查会话是否有效
func (pm *PasswordManager) IsValidSession(token string) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	exp, ok := pm.sessions[token]
	if !ok {
		return false
	}
	if pm.now().After(exp) {
		delete(pm.sessions, token)
		return false
	}
	return true
}

// ClearSessions 清除所有会话
func (pm *PasswordManager) ClearSessions() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.sessions = make(map[string]time.Time)
}

// SessionToken 从 X-Auth-Token 请求头或 auth_token cookie 读取会话 token
func SessionToken(c *gin.Context) string {
	token := c.GetHeader("X-Auth-Token")
	if token == "" {
		token, _ = c.Cookie("auth_token")
	}
	return token
}

// GetPasswordStatus 获取密码保护状态
func (a *API) GetPasswordStatus(c *gin.Context) {
	hash := config.PasswordHash()
	enabled := hash != ""

	isLocked := false
	if enabled {
		isLocked = !a.Password.IsValidSession(SessionToken(c))
	}

	transport.SendSuccess(c, gin.H{
		"enabled":   enabled,
		"is_locked": isLocked,
	})
}

// SetPassword 设置/修改密码
func (a *API) SetPassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}

	if len(req.NewPassword) < 4 {
		transport.BadRequest(c, "密码长度不能少于4位")
		return
	}

	existingHash := config.PasswordHash()

	// 如果已有密码，需要验证旧密码
	if existingHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(req.OldPassword)); err != nil {
			transport.BadRequest(c, "旧密码错误")
			return
		}
	}

	// 生成新密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		transport.InternalServerError(c, "密码加密失败")
		return
	}

	if err := config.SavePasswordHash(string(hash)); err != nil {
		transport.InternalServerError(c, err.Error())
		return
	}

	// 修改密码后要求重新验证
	a.Password.ClearSessions()

	transport.SendSuccess(c, gin.H{"status": "password_set"})
}

// VerifyPassword 验证密码（解锁）
func (a *API) VerifyPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}

	hash := config.PasswordHash()
	if hash == "" {
		transport.BadRequest(c, "未设置密码")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		transport.BadRequest(c, "密码错误")
		return
	}

	token, err := a.Password.generateToken()
	if err != nil {
		transport.InternalServerError(c, "生成会话失败")
		return
	}
	a.Password.AddSession(token)

	// 设置 cookie
	c.SetCookie("auth_token", token, int(sessionTTL.Seconds()), "/", "", false, true)

	transport.SendSuccess(c, gin.H{
		"status": "unlocked",
		"token":  token,
	})
}

// DisablePassword 关闭密码保护
func (a *API) DisablePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}

	hash := config.PasswordHash()
	if hash == "" {
		transport.BadRequest(c, "未设置密码")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		transport.BadRequest(c, "密码错误")
		return
	}

	if err := config.SavePasswordHash(""); err != nil {
		transport.InternalServerError(c, err.Error())
		return
	}

	a.Password.ClearSessions()

	transport.SendSuccess(c, gin.H{"status": "disabled"})
}
