package shared

import (
	"strconv"
	"strings"

	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionKey 会话在 gin 上下文中的键
const SessionKey = "session"

// SetSession 写入会话
func SetSession(c *gin.Context, sess *service.Session) {
	c.Set(SessionKey, sess)
}

// GetSession 读取会话，未登录返回 nil
func GetSession(c *gin.Context) *service.Session {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*service.Session)
	if !ok {
		return nil
	}
	return sess
}

// ParseUintParam 解析路径中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
