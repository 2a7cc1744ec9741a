package public

import (
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// SellerBookRequest 卖家书籍请求
type SellerBookRequest struct {
	Title        string        `json:"title" binding:"required"`
	Author       string        `json:"author" binding:"required"`
	Edition      string        `json:"edition"`
	Subject      string        `json:"subject" binding:"required"`
	Course       string        `json:"course"`
	Condition    string        `json:"condition" binding:"required"`
	BasePrice    models.Money  `json:"base_price"`
	SellingPrice *models.Money `json:"selling_price"`
	Description  string        `json:"description"`
	ImageURL     string        `json:"image_url"`
	IsAvailable  *bool         `json:"is_available"`
}

func (r SellerBookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:        r.Title,
		Author:       r.Author,
		Edition:      r.Edition,
		Subject:      r.Subject,
		Course:       r.Course,
		Condition:    r.Condition,
		BasePrice:    r.BasePrice,
		SellingPrice: r.SellingPrice,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		IsAvailable:  r.IsAvailable,
	}
}

// ListSellerBooks 卖家自己的书籍
func (h *Handler) ListSellerBooks(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	books, total, err := h.BookService.ListMine(getSession(c), page, pageSize)
	if err != nil {
		respondSellerBookError(c, err)
		return
	}
	response.SuccessWithPage(c, books, response.NewPagination(page, pageSize, total))
}

// CreateSellerBook 上架书籍
func (h *Handler) CreateSellerBook(c *gin.Context) {
	var req SellerBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	book, err := h.BookService.Create(getSession(c), req.toInput())
	if err != nil {
		respondSellerBookError(c, err)
		return
	}
	response.Success(c, book)
}

// UpdateSellerBook 修改书籍
func (h *Handler) UpdateSellerBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SellerBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	book, err := h.BookService.Update(getSession(c), id, req.toInput())
	if err != nil {
		respondSellerBookError(c, err)
		return
	}
	response.Success(c, book)
}

// DeleteSellerBook 删除书籍
func (h *Handler) DeleteSellerBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.BookService.Delete(getSession(c), id); err != nil {
		respondSellerBookError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ListSellerOrders 包含卖家书籍的订单（只读）
func (h *Handler) ListSellerOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	orders, total, err := h.OrderService.ListForSeller(getSession(c), service.OrderQuery{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondSellerOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
