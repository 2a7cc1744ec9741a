package models

import (
	"time"

	"gorm.io/gorm"
)

// Book 书籍表
type Book struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                       // 主键
	SellerID     uint           `gorm:"index;not null" json:"seller_id"`                            // 卖家ID
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`                    // 书名
	Author       string         `gorm:"type:varchar(255);not null" json:"author"`                   // 作者
	Edition      string         `gorm:"type:varchar(64);default:''" json:"edition"`                 // 版次
	Subject      string         `gorm:"type:varchar(120);index;not null" json:"subject"`            // 学科
	Course       string         `gorm:"type:varchar(120);default:''" json:"course"`                 // 课程
	Condition    string         `gorm:"type:varchar(20);not null" json:"condition"`                 // 成色
	BasePrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price"`    // 原价
	SellingPrice *Money         `gorm:"type:decimal(20,2)" json:"selling_price"`                    // 售价（为空时按原价出售）
	Description  string         `gorm:"type:text" json:"description"`                               // 描述
	ImageURL     string         `gorm:"type:varchar(500);default:''" json:"image_url"`              // 封面图
	IsAvailable  bool           `gorm:"index;not null" json:"is_available"`                         // 是否在售
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Seller *Profile `gorm:"foreignKey:SellerID" json:"seller,omitempty"` // 卖家
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// EffectivePrice 实际售价：有售价取售价，否则取原价
func (b Book) EffectivePrice() Money {
	if b.SellingPrice != nil {
		return *b.SellingPrice
	}
	return b.BasePrice
}
