package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"accu-registry/apperrors"
	"accu-registry/models"
	"accu-registry/utils"
)

// CreateLoanDTO represents the data for extending a loan against a batch
type CreateLoanDTO struct {
	BatchID         uint      `json:"batchId" validate:"required"`
	CreditorID      uint      `json:"creditorId" validate:"required"`
	Quantity        int64     `json:"quantity" validate:"required,gt=0"`
	LoanAmount      float64   `json:"loanAmount" validate:"required,gt=0"`
	BuybackRate     float64   `json:"buybackRate" validate:"required,gt=0"`
	BuybackDate     time.Time `json:"buybackDate" validate:"required"`
	CollateralValue float64   `json:"collateralValue" validate:"required,gt=0"`
	EntityID        uint      `json:"entityId" validate:"required"`
}

// LoanFilter narrows loan listings
type LoanFilter struct {
	EntityID uint
	BatchID  uint
	Status   string
}

// LoanService provides the loan ledger operations
type LoanService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewLoanService creates a new LoanService
func NewLoanService(db *gorm.DB, email *EmailService) *LoanService {
	return &LoanService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// lockForUpdate adds a row lock to the query. SQLite (used by the tests) has
// no FOR UPDATE; its single-writer lock gives equivalent protection there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockBatch loads a batch row for update
func lockBatch(tx *gorm.DB, id uint) (*models.ACCU, error) {
	var batch models.ACCU
	if err := lockForUpdate(tx).First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("batch", id)
		}
		return nil, fmt.Errorf("fetching batch: %w", err)
	}
	return &batch, nil
}

// pledgedQuantity sums the quantity of active loans against a batch
func pledgedQuantity(tx *gorm.DB, batchID uint) (int64, error) {
	var pledged int64
	err := tx.Model(&models.Loan{}).
		Where("batch_id = ? AND status = ?", batchID, models.LoanStatusActive).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&pledged).Error
	if err != nil {
		return 0, fmt.Errorf("summing pledged quantity: %w", err)
	}
	return pledged, nil
}

// Create extends a loan against a batch. The batch row is locked before the
// active-loan sum is read so concurrent loans cannot jointly over-pledge.
func (s *LoanService) Create(dto CreateLoanDTO) (*models.Loan, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	batch, err := lockBatch(tx, dto.BatchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := referenceExists(tx, &models.Creditor{}, dto.CreditorID, "creditor"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := referenceExists(tx, &models.Entity{}, dto.EntityID, "entity"); err != nil {
		tx.Rollback()
		return nil, err
	}

	pledged, err := pledgedQuantity(tx, dto.BatchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	available := batch.Quantity - pledged
	if dto.Quantity > available {
		tx.Rollback()
		return nil, apperrors.NewInsufficientCollateralError(dto.Quantity, available)
	}

	loan := &models.Loan{
		BatchID:         dto.BatchID,
		CreditorID:      dto.CreditorID,
		Quantity:        dto.Quantity,
		LoanAmount:      dto.LoanAmount,
		BuybackRate:     dto.BuybackRate,
		BuybackDate:     dto.BuybackDate,
		CollateralValue: dto.CollateralValue,
		EntityID:        dto.EntityID,
		Status:          models.LoanStatusActive,
	}

	if err := tx.Create(loan).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating loan: %w", err)
	}

	// An active batch with pledged units is on loan
	if batch.Status == models.BatchStatusActive {
		batch.Status = models.BatchStatusOnLoan
		if err := tx.Save(batch).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("updating batch status: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Loan %d extended against batch %s for %d units", loan.ID, batch.BatchNumber, loan.Quantity)
	utils.GetMetrics().RecordLedgerOperation("loan_create", nil)

	return loan, nil
}

// Repay records the buyback of a loan. When no other active loans reference
// the batch, an on-loan batch returns to active.
func (s *LoanService) Repay(id uint) (*models.Loan, error) {
	loan, err := s.settle(id, models.LoanStatusRepaid)
	if err != nil {
		return nil, err
	}

	// Notification failure must not undo a committed repayment
	if s.email != nil {
		var batch models.ACCU
		if err := s.db.Preload("User").First(&batch, loan.BatchID).Error; err == nil {
			if err := s.email.SendLoanRepaidNotification(batch.User.Email, loan.ID, batch.BatchNumber); err != nil {
				utils.LogError("Sending repayment notification for loan %d: %v", loan.ID, err)
			}
		}
	}

	return loan, nil
}

// MarkDefaulted records a loan default. Defaulted is terminal; the pledged
// units stop counting against the batch.
func (s *LoanService) MarkDefaulted(id uint) (*models.Loan, error) {
	return s.settle(id, models.LoanStatusDefaulted)
}

// settle moves an active loan to a terminal status and recomputes the
// batch's status in the same transaction
func (s *LoanService) settle(id uint, status models.LoanStatus) (*models.Loan, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	// Lock the loan row so concurrent settlements cannot both pass the
	// terminal check
	var loan models.Loan
	if err := lockForUpdate(tx).First(&loan, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("loan", id)
		}
		return nil, fmt.Errorf("fetching loan: %w", err)
	}

	if loan.Status.Terminal() {
		tx.Rollback()
		return nil, apperrors.NewInvalidStateTransitionError("loan", string(loan.Status), string(status))
	}

	batch, err := lockBatch(tx, loan.BatchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	loan.Status = status
	if status == models.LoanStatusRepaid {
		loan.RepaidAt = &now
	}
	if err := tx.Save(&loan).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating loan: %w", err)
	}

	pledged, err := pledgedQuantity(tx, loan.BatchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if pledged == 0 && batch.Status == models.BatchStatusOnLoan {
		batch.Status = models.BatchStatusActive
		if err := tx.Save(batch).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("updating batch status: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Loan %d settled as %s", loan.ID, status)
	utils.GetMetrics().RecordLedgerOperation("loan_settle", nil)

	return &loan, nil
}

// GetByID returns a loan by its id
func (s *LoanService) GetByID(id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("loan", id)
		}
		return nil, fmt.Errorf("fetching loan: %w", err)
	}
	return &loan, nil
}

// List returns loans matching the filter, newest first
func (s *LoanService) List(filter LoanFilter) ([]models.Loan, error) {
	query := s.db.Model(&models.Loan{}).Order("created_at DESC")
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.BatchID != 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var loans []models.Loan
	if err := query.Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	return loans, nil
}
