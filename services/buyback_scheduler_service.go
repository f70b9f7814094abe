package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"accu-registry/models"
	"accu-registry/utils"
)

// BuybackSchedulerService periodically scans for active loans whose buyback
// date is approaching or has passed and sends email reminders. It never
// changes loan state on its own; defaults are recorded by an operator.
type BuybackSchedulerService struct {
	db           *gorm.DB
	email        *EmailService
	reminderDays int
}

// NewBuybackSchedulerService creates a new BuybackSchedulerService
func NewBuybackSchedulerService(db *gorm.DB, email *EmailService, reminderDays int) *BuybackSchedulerService {
	return &BuybackSchedulerService{
		db:           db,
		email:        email,
		reminderDays: reminderDays,
	}
}

// Start launches the reminder loop
func (s *BuybackSchedulerService) Start() {
	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		for range ticker.C {
			if err := s.ProcessReminders(); err != nil {
				utils.LogError("Processing buyback reminders: %v", err)
			}
		}
	}()
}

// ProcessReminders sends a reminder for every active loan whose buyback date
// falls within the reminder window or lies in the past
func (s *BuybackSchedulerService) ProcessReminders() error {
	deadline := time.Now().AddDate(0, 0, s.reminderDays)

	loans, err := s.DueLoans(deadline)
	if err != nil {
		return err
	}

	for _, loan := range loans {
		if s.email == nil {
			continue
		}
		if err := s.email.SendBuybackReminder(loan.Batch.User.Email, loan.ID, loan.Batch.BatchNumber, loan.BuybackDate); err != nil {
			utils.LogError("Sending buyback reminder for loan %d: %v", loan.ID, err)
		}
	}

	if len(loans) > 0 {
		utils.LogInfo("Sent %d buyback reminders", len(loans))
	}

	return nil
}

// DueLoans returns active loans with a buyback date at or before the deadline
func (s *BuybackSchedulerService) DueLoans(deadline time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := s.db.Where("status = ? AND buyback_date <= ?", models.LoanStatusActive, deadline).
		Preload("Batch").
		Preload("Batch.User").
		Order("buyback_date ASC").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("fetching due loans: %w", err)
	}
	return loans, nil
}
