package public

import "github.com/campusbooks/internal/provider"

// Handler 前台接口处理器入口
// 说明：游客、买家（junior）与卖家（senior）共用同一处理器，权限由路由组上的角色中间件控制。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
