package public

import (
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 买家订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	orders, total, err := h.OrderService.ListMine(getSession(c), service.OrderQuery{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 买家订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetMine(getSession(c), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
