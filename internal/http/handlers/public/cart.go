package public

import (
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/i18n"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// UpdateCartQuantityRequest 修改数量请求
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SyncCartItem 设备端同步的购物车行
type SyncCartItem struct {
	BookID   uint `json:"id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// SyncCartRequest 设备端同步请求
type SyncCartRequest struct {
	Items []SyncCartItem `json:"items"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.CartService.Get(c.Request.Context(), getSession(c))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.Add(c.Request.Context(), getSession(c), req.BookID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "success.added_to_cart"), view)
}

// UpdateCartQuantity 修改数量，小于 1 时保持不变
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}
	var req UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.UpdateQuantity(c.Request.Context(), getSession(c), bookID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}
	view, err := h.CartService.Remove(c.Request.Context(), getSession(c), bookID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.CartService.Clear(c.Request.Context(), getSession(c)); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": []interface{}{}, "total": "0.00"})
}

// SyncCart 用设备端购物车整体替换
func (h *Handler) SyncCart(c *gin.Context) {
	var req SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	lines := make([]service.CartSyncItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.CartSyncItem{BookID: item.BookID, Quantity: item.Quantity})
	}
	view, err := h.CartService.Sync(c.Request.Context(), getSession(c), lines)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}
