package public

import (
	"errors"
	"io"
	"strings"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/i18n"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	DeliveryLocation string `json:"delivery_location"`
	PaymentMethod    string `json:"payment_method"`
}

// Checkout 提交订单
// 幂等键优先取请求头，缺省时使用请求 ID
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// 请求体无效时仍按登录、身份、购物车的顺序先给出对应跳转
		if preErr := h.CheckoutService.Precheck(c.Request.Context(), getSession(c)); preErr != nil {
			respondCheckoutError(c, preErr)
			return
		}
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(constants.IdempotencyHeader))
	if key == "" {
		key = c.GetString(response.RequestIDKey)
	}

	result, err := h.CheckoutService.Checkout(c.Request.Context(), getSession(c), service.CheckoutInput{
		DeliveryLocation: req.DeliveryLocation,
		PaymentMethod:    req.PaymentMethod,
		IdempotencyKey:   key,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "success.order_placed"), gin.H{
		"order":    result.Order,
		"replayed": result.Replayed,
	})
}
