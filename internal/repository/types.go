package repository

// BookListFilter 查询书籍列表的过滤条件
type BookListFilter struct {
	Page          int
	PageSize      int
	Search        string // 匹配书名、作者、描述
	Subject       string
	Sort          string // newest / price-low / price-high
	SellerID      uint
	OnlyAvailable bool
	WithSeller    bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	BuyerID  uint
	SellerID uint // 非 0 时只返回包含该卖家书籍的订单
	Status   string
}
