package models

import (
	"time"
)

// Entity represents an organization/tenant that owns registry records
type Entity struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;size:100" json:"name"`
	Users     []User    `gorm:"foreignKey:EntityID" json:"-"`
	Batches   []ACCU    `gorm:"foreignKey:EntityID" json:"-"`
	Loans     []Loan    `gorm:"foreignKey:EntityID" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Entity) TableName() string {
	return "entities"
}
