package models

import (
	"time"
)

// ReclassificationStatus represents the state of a reclassification request
type ReclassificationStatus string

const (
	ReclassificationPending  ReclassificationStatus = "pending"
	ReclassificationApproved ReclassificationStatus = "approved"
	ReclassificationRejected ReclassificationStatus = "rejected"
)

func (s ReclassificationStatus) Valid() bool {
	switch s {
	case ReclassificationPending, ReclassificationApproved, ReclassificationRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition
func (s ReclassificationStatus) Terminal() bool {
	return s == ReclassificationApproved || s == ReclassificationRejected
}

// ReclassificationRequest represents a request to move a batch between
// accounting classifications. fromClass must equal the batch's current
// classification at submission time. Approval rewrites the batch's
// classification in the same transaction that flips the request status.
type ReclassificationRequest struct {
	ID            uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID       uint                   `gorm:"column:batch_id;not null;index" json:"batchId"`
	Batch         ACCU                   `gorm:"foreignKey:BatchID" json:"-"`
	FromClass     Classification         `gorm:"column:from_class;type:varchar(20);not null" json:"fromClass"`
	ToClass       Classification         `gorm:"column:to_class;type:varchar(20);not null" json:"toClass"`
	Reason        string                 `gorm:"column:reason;size:500" json:"reason"`
	Status        ReclassificationStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	SubmittedByID uint                   `gorm:"column:submitted_by_id;not null" json:"submittedBy"`
	SubmittedBy   User                   `gorm:"foreignKey:SubmittedByID" json:"-"`
	EntityID      uint                   `gorm:"column:entity_id;not null;index" json:"entityId"`
	DecidedAt     *time.Time             `gorm:"column:decided_at" json:"decidedAt,omitempty"`
	CreatedAt     time.Time              `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (ReclassificationRequest) TableName() string {
	return "reclassification_requests"
}
