package models

import (
	"time"
)

// Classification represents the accounting treatment of a batch
type Classification string

const (
	ClassificationInventory  Classification = "inventory"
	ClassificationIntangible Classification = "intangible"
	ClassificationFVTPL      Classification = "fvtpl"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationInventory, ClassificationIntangible, ClassificationFVTPL:
		return true
	}
	return false
}

// BatchStatus represents the server-maintained lifecycle status of a batch.
// It is never set by clients; the loan, reclassification and valuation
// workflows are the only writers.
type BatchStatus string

const (
	BatchStatusActive       BatchStatus = "active"
	BatchStatusImpaired     BatchStatus = "impaired"
	BatchStatusReclassified BatchStatus = "reclassified"
	BatchStatusOnLoan       BatchStatus = "on_loan"
)

func (s BatchStatus) Valid() bool {
	switch s {
	case BatchStatusActive, BatchStatusImpaired, BatchStatusReclassified, BatchStatusOnLoan:
		return true
	}
	return false
}

// ACCU represents a batch of Australian Carbon Credit Units, the central
// inventory entity of the registry. The serial range is contiguous:
// serialRangeEnd - serialRangeStart + 1 == quantity.
type ACCU struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchNumber      string         `gorm:"column:batch_number;unique;not null;size:50" json:"batchNumber"`
	Quantity         int64          `gorm:"column:quantity;not null" json:"quantity"`
	AcquisitionCost  float64        `gorm:"column:acquisition_cost;type:decimal(20,2);not null" json:"acquisitionCost"`
	Classification   Classification `gorm:"column:classification;type:varchar(20);not null" json:"classification"`
	Status           BatchStatus    `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	AcquisitionDate  time.Time      `gorm:"column:acquisition_date;not null" json:"acquisitionDate"`
	IssuanceDate     time.Time      `gorm:"column:issuance_date" json:"issuanceDate"`
	Vintage          string         `gorm:"column:vintage;size:4" json:"vintage"`
	Location         string         `gorm:"column:location;size:200" json:"location"`
	Category         string         `gorm:"column:category;size:100" json:"category"`
	SerialRangeStart string         `gorm:"column:serial_range_start;size:20" json:"serialRangeStart"`
	SerialRangeEnd   string         `gorm:"column:serial_range_end;size:20" json:"serialRangeEnd"`
	EntityID         uint           `gorm:"column:entity_id;not null;index" json:"entityId"`
	Entity           Entity         `gorm:"foreignKey:EntityID" json:"-"`
	UserID           uint           `gorm:"column:user_id;not null" json:"userId"`
	User             User           `gorm:"foreignKey:UserID" json:"-"`
	ProjectID        uint           `gorm:"column:project_id;not null" json:"projectId"`
	Project          Project        `gorm:"foreignKey:ProjectID" json:"-"`
	Loans            []Loan         `gorm:"foreignKey:BatchID" json:"-"`
	CreatedAt        time.Time      `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (ACCU) TableName() string {
	return "accus"
}
