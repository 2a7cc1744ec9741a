package models

import (
	"time"
)

// OrderItem 订单项表
// Price 为下单时的成交单价，书籍后续改价不影响历史订单
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                      // 订单ID
	BookID    uint      `gorm:"index;not null" json:"book_id"`                       // 书籍ID
	Title     string    `gorm:"type:varchar(255);default:''" json:"title"`           // 书名快照
	Quantity  int       `gorm:"not null" json:"quantity"`                            // 数量
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`  // 成交单价
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // 关联书籍
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 小计
func (i OrderItem) Subtotal() Money {
	return i.Price.Times(i.Quantity)
}
