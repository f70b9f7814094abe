package models

import (
	"time"
)

// ValuationLog records a valuation observation for a batch, supplied by an
// external valuation process. The registry stores the observation; it does
// not compute NRV itself.
type ValuationLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID       uint      `gorm:"column:batch_id;not null;index" json:"batchId"`
	Batch         ACCU      `gorm:"foreignKey:BatchID" json:"-"`
	MarketValue   float64   `gorm:"column:market_value;type:decimal(20,2);not null" json:"marketValue"`
	ValuationDate time.Time `gorm:"column:valuation_date;not null" json:"valuationDate"`
	Source        string    `gorm:"column:source;size:100" json:"source"`
	Notes         string    `gorm:"column:notes;size:500" json:"notes"`
	CreatedAt     time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (ValuationLog) TableName() string {
	return "valuation_logs"
}
