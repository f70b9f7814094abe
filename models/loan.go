package models

import (
	"time"
)

// LoanStatus represents the lifecycle status of a loan
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusRepaid    LoanStatus = "repaid"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusActive, LoanStatusRepaid, LoanStatusDefaulted:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition
func (s LoanStatus) Terminal() bool {
	return s == LoanStatusRepaid || s == LoanStatusDefaulted
}

// Loan represents collateralized borrowing against an ACCU batch. Only
// loans in active status count toward the pledged quantity of a batch.
type Loan struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID         uint       `gorm:"column:batch_id;not null;index" json:"batchId"`
	Batch           ACCU       `gorm:"foreignKey:BatchID" json:"-"`
	CreditorID      uint       `gorm:"column:creditor_id;not null" json:"creditorId"`
	Creditor        Creditor   `gorm:"foreignKey:CreditorID" json:"-"`
	Quantity        int64      `gorm:"column:quantity;not null" json:"quantity"`
	LoanAmount      float64    `gorm:"column:loan_amount;type:decimal(20,2);not null" json:"loanAmount"`
	BuybackRate     float64    `gorm:"column:buyback_rate;type:decimal(10,2);not null" json:"buybackRate"`
	BuybackDate     time.Time  `gorm:"column:buyback_date;not null" json:"buybackDate"`
	CollateralValue float64    `gorm:"column:collateral_value;type:decimal(20,2);not null" json:"collateralValue"`
	EntityID        uint       `gorm:"column:entity_id;not null;index" json:"entityId"`
	Entity          Entity     `gorm:"foreignKey:EntityID" json:"-"`
	Status          LoanStatus `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	RepaidAt        *time.Time `gorm:"column:repaid_at" json:"repaidAt,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Loan) TableName() string {
	return "loans"
}
