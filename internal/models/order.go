package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo          string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	BuyerID          uint           `gorm:"index;not null" json:"buyer_id"`                            // 买家ID
	Status           string         `gorm:"type:varchar(20);index;not null" json:"status"`             // 订单状态
	PaymentMethod    string         `gorm:"type:varchar(20);not null" json:"payment_method"`           // 支付方式 cod / upi
	PaymentStatus    string         `gorm:"type:varchar(20);index;not null" json:"payment_status"`     // 支付状态
	DeliveryLocation string         `gorm:"type:text;not null" json:"delivery_location"`               // 交付地点（自由文本）
	TotalAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额
	CancelledAt      *time.Time     `gorm:"index" json:"cancelled_at"`                                 // 取消时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Buyer *Profile    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"` // 买家
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
