package public

import (
	"errors"
	"strings"

	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// SellerView 书籍详情中的卖家信息
type SellerView struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

// BookView 书籍响应
type BookView struct {
	models.Book
	Price  models.Money `json:"price"`
	Seller *SellerView  `json:"seller,omitempty"`
}

func newBookView(book models.Book) BookView {
	view := BookView{Book: book, Price: book.EffectivePrice()}
	if book.Seller != nil {
		view.Seller = &SellerView{ID: book.Seller.ID, FullName: book.Seller.FullName, Phone: book.Seller.Phone}
	}
	view.Book.Seller = nil
	return view
}

func newBookViews(books []models.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, book := range books {
		views = append(views, newBookView(book))
	}
	return views
}

// ListBooks 在售书籍列表
func (h *Handler) ListBooks(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	books, total, err := h.BookService.ListPublic(service.PublicBookQuery{
		Search:   strings.TrimSpace(c.Query("q")),
		Subject:  strings.TrimSpace(c.Query("subject")),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, newBookViews(books), response.NewPagination(page, pageSize, total))
}

// ListSubjects 学科列表
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.BookService.Subjects()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, subjects)
}

// FeaturedBooks 首页精选
func (h *Handler) FeaturedBooks(c *gin.Context) {
	books, err := h.BookService.Featured()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, newBookViews(books))
}

// GetBook 书籍详情
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := h.BookService.GetPublic(id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, response.CodeNotFound, "error.book_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, newBookView(*book))
}
