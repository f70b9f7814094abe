package models

import (
	"time"
)

// Creditor represents an external loan counterparty
type Creditor struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;size:100" json:"name"`
	Loans     []Loan    `gorm:"foreignKey:CreditorID" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Creditor) TableName() string {
	return "creditors"
}
