package models

import "time"

// CheckoutAttempt 结算幂等记录
// 同一买家同一幂等键最多对应一笔订单，与订单在同一事务内写入
type CheckoutAttempt struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                           // 主键
	BuyerID        uint      `gorm:"not null;uniqueIndex:idx_checkout_buyer_key" json:"buyer_id"`                    // 买家ID
	IdempotencyKey string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_checkout_buyer_key" json:"key"`       // 幂等键
	Fingerprint    string    `gorm:"type:varchar(64);not null" json:"fingerprint"`                                   // 请求指纹（购物车+交付信息）
	OrderID        uint      `gorm:"index;not null" json:"order_id"`                                                 // 订单ID
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                        // 创建时间
}

// TableName 指定表名
func (CheckoutAttempt) TableName() string {
	return "checkout_attempts"
}
