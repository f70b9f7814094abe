package models

import (
	"time"
)

// MarketPrice is an append-only price observation. Rows are never updated
// or deleted in normal operation.
type MarketPrice struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Price         float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Date          time.Time `gorm:"column:date;not null;index" json:"date"`
	CommodityType string    `gorm:"column:commodity_type;not null;size:20;default:'ACCU'" json:"commodityType"`
	Source        string    `gorm:"column:source;not null;size:100" json:"source"`
	EntityID      uint      `gorm:"column:entity_id;not null;index" json:"entityId"`
	Entity        Entity    `gorm:"foreignKey:EntityID" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (MarketPrice) TableName() string {
	return "market_prices"
}
