package models

// CartItem 购物车项
// 不落库，整个列表序列化后保存在购物车存储的单一键下
type CartItem struct {
	BookID   uint   `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Price    Money  `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

// Subtotal 小计
func (i CartItem) Subtotal() Money {
	return i.Price.Times(i.Quantity)
}
