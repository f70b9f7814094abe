package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"accu-registry/apperrors"
	"accu-registry/models"
	"accu-registry/utils"
)

// CreateBatchDTO represents the data for registering an ACCU batch
type CreateBatchDTO struct {
	BatchNumber      string    `json:"batchNumber" validate:"required,min=3,max=50"`
	Quantity         int64     `json:"quantity" validate:"required,gt=0"`
	AcquisitionCost  float64   `json:"acquisitionCost" validate:"required,gt=0"`
	Classification   string    `json:"classification" validate:"required,oneof=inventory intangible fvtpl"`
	AcquisitionDate  time.Time `json:"acquisitionDate" validate:"required"`
	IssuanceDate     time.Time `json:"issuanceDate"`
	Vintage          string    `json:"vintage" validate:"omitempty,len=4"`
	Location         string    `json:"location" validate:"omitempty,max=200"`
	Category         string    `json:"category" validate:"omitempty,max=100"`
	SerialRangeStart string    `json:"serialRangeStart" validate:"required"`
	SerialRangeEnd   string    `json:"serialRangeEnd" validate:"required"`
	EntityID         uint      `json:"entityId" validate:"required"`
	UserID           uint      `json:"-"`
	ProjectID        uint      `json:"projectId" validate:"required"`
}

// UpdateBatchDTO represents the editable fields of a batch. Classification
// and status are deliberately absent: classification moves only through the
// reclassification workflow and status is server-owned.
type UpdateBatchDTO struct {
	Quantity         *int64     `json:"quantity" validate:"omitempty,gt=0"`
	AcquisitionCost  *float64   `json:"acquisitionCost" validate:"omitempty,gt=0"`
	AcquisitionDate  *time.Time `json:"acquisitionDate"`
	IssuanceDate     *time.Time `json:"issuanceDate"`
	Vintage          *string    `json:"vintage" validate:"omitempty,len=4"`
	Location         *string    `json:"location" validate:"omitempty,max=200"`
	Category         *string    `json:"category" validate:"omitempty,max=100"`
	SerialRangeStart *string    `json:"serialRangeStart"`
	SerialRangeEnd   *string    `json:"serialRangeEnd"`
}

// RecordValuationDTO represents an externally computed valuation observation
type RecordValuationDTO struct {
	MarketValue   float64   `json:"marketValue" validate:"required,gt=0"`
	ValuationDate time.Time `json:"valuationDate" validate:"required"`
	Source        string    `json:"source" validate:"omitempty,max=100"`
	Notes         string    `json:"notes" validate:"omitempty,max=500"`
}

// BatchFilter narrows batch listings
type BatchFilter struct {
	EntityID       uint
	Classification string
	Status         string
}

// BatchService provides the ACCU batch ledger operations
type BatchService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewBatchService creates a new BatchService
func NewBatchService(db *gorm.DB) *BatchService {
	return &BatchService{
		db:        db,
		validator: validator.New(),
	}
}

// serialRangeLength parses a serial range and returns the number of units it
// covers. Both bounds are decimal strings.
func serialRangeLength(start, end string) (int64, error) {
	s, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("serialRangeStart must be numeric")
	}
	e, err := strconv.ParseInt(end, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("serialRangeEnd must be numeric")
	}
	if e < s {
		return 0, apperrors.NewValidationError("serialRangeEnd must not precede serialRangeStart")
	}
	return e - s + 1, nil
}

// Create registers a new batch. The serial range must cover exactly the
// batch quantity and the batch number must be unused.
func (s *BatchService) Create(dto CreateBatchDTO) (*models.ACCU, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	length, err := serialRangeLength(dto.SerialRangeStart, dto.SerialRangeEnd)
	if err != nil {
		return nil, err
	}
	if length != dto.Quantity {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"serial range covers %d units but quantity is %d", length, dto.Quantity))
	}

	if !dto.IssuanceDate.IsZero() && dto.AcquisitionDate.Before(dto.IssuanceDate) {
		return nil, apperrors.NewValidationError("issuanceDate must not be after acquisitionDate")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	// Referenced registry rows must exist
	if err := referenceExists(tx, &models.Entity{}, dto.EntityID, "entity"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := referenceExists(tx, &models.User{}, dto.UserID, "user"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := referenceExists(tx, &models.Project{}, dto.ProjectID, "project"); err != nil {
		tx.Rollback()
		return nil, err
	}

	var existing models.ACCU
	if err := tx.Where("batch_number = ?", dto.BatchNumber).First(&existing).Error; err == nil {
		tx.Rollback()
		return nil, apperrors.NewConflictError("batch number " + dto.BatchNumber + " is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, fmt.Errorf("checking batch number: %w", err)
	}

	batch := &models.ACCU{
		BatchNumber:      dto.BatchNumber,
		Quantity:         dto.Quantity,
		AcquisitionCost:  dto.AcquisitionCost,
		Classification:   models.Classification(dto.Classification),
		Status:           models.BatchStatusActive,
		AcquisitionDate:  dto.AcquisitionDate,
		IssuanceDate:     dto.IssuanceDate,
		Vintage:          dto.Vintage,
		Location:         dto.Location,
		Category:         dto.Category,
		SerialRangeStart: dto.SerialRangeStart,
		SerialRangeEnd:   dto.SerialRangeEnd,
		EntityID:         dto.EntityID,
		UserID:           dto.UserID,
		ProjectID:        dto.ProjectID,
	}

	if err := tx.Create(batch).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating batch: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Batch %s registered with %d units", batch.BatchNumber, batch.Quantity)
	utils.GetMetrics().RecordLedgerOperation("batch_create", nil)

	return batch, nil
}

// GetByID returns a batch by its id
func (s *BatchService) GetByID(id uint) (*models.ACCU, error) {
	var batch models.ACCU
	if err := s.db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("batch", id)
		}
		return nil, fmt.Errorf("fetching batch: %w", err)
	}
	return &batch, nil
}

// List returns batches matching the filter, newest first
func (s *BatchService) List(filter BatchFilter) ([]models.ACCU, error) {
	query := s.db.Model(&models.ACCU{}).Order("created_at DESC")
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Classification != "" {
		query = query.Where("classification = ?", filter.Classification)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var batches []models.ACCU
	if err := query.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	return batches, nil
}

// Update edits a batch's descriptive fields. The serial-range/quantity
// invariant is re-checked when either side changes.
func (s *BatchService) Update(id uint, dto UpdateBatchDTO) (*models.ACCU, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	batch, err := lockBatch(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if dto.Quantity != nil {
		batch.Quantity = *dto.Quantity
	}
	if dto.AcquisitionCost != nil {
		batch.AcquisitionCost = *dto.AcquisitionCost
	}
	if dto.AcquisitionDate != nil {
		batch.AcquisitionDate = *dto.AcquisitionDate
	}
	if dto.IssuanceDate != nil {
		batch.IssuanceDate = *dto.IssuanceDate
	}
	if dto.Vintage != nil {
		batch.Vintage = *dto.Vintage
	}
	if dto.Location != nil {
		batch.Location = *dto.Location
	}
	if dto.Category != nil {
		batch.Category = *dto.Category
	}
	if dto.SerialRangeStart != nil {
		batch.SerialRangeStart = *dto.SerialRangeStart
	}
	if dto.SerialRangeEnd != nil {
		batch.SerialRangeEnd = *dto.SerialRangeEnd
	}

	length, err := serialRangeLength(batch.SerialRangeStart, batch.SerialRangeEnd)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if length != batch.Quantity {
		tx.Rollback()
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"serial range covers %d units but quantity is %d", length, batch.Quantity))
	}

	if !batch.IssuanceDate.IsZero() && batch.AcquisitionDate.Before(batch.IssuanceDate) {
		tx.Rollback()
		return nil, apperrors.NewValidationError("issuanceDate must not be after acquisitionDate")
	}

	// Shrinking the batch must not leave active loans over-pledged
	if dto.Quantity != nil {
		pledged, err := pledgedQuantity(tx, id)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if batch.Quantity < pledged {
			tx.Rollback()
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"quantity %d is below the %d units pledged to active loans", batch.Quantity, pledged))
		}
	}

	batch.UpdatedAt = time.Now()
	if err := tx.Save(batch).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating batch: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return batch, nil
}

// Delete removes a batch. Batches referenced by any loan or by a pending
// reclassification request cannot be deleted.
func (s *BatchService) Delete(id uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	var batch models.ACCU
	if err := tx.First(&batch, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("batch", id)
		}
		return fmt.Errorf("fetching batch: %w", err)
	}

	var loanCount int64
	if err := tx.Model(&models.Loan{}).Where("batch_id = ?", id).Count(&loanCount).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("counting loans: %w", err)
	}
	if loanCount > 0 {
		tx.Rollback()
		return apperrors.NewConflictError("batch is referenced by loans")
	}

	var pendingCount int64
	if err := tx.Model(&models.ReclassificationRequest{}).
		Where("batch_id = ? AND status = ?", id, models.ReclassificationPending).
		Count(&pendingCount).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("counting pending reclassification requests: %w", err)
	}
	if pendingCount > 0 {
		tx.Rollback()
		return apperrors.NewConflictError("batch has a pending reclassification request")
	}

	if err := tx.Delete(&batch).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting batch: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Batch %s deleted", batch.BatchNumber)
	return nil
}

// RecordValuation stores a valuation observation for a batch. A market value
// below acquisition cost impairs an active batch; the log row is written
// either way.
func (s *BatchService) RecordValuation(batchID uint, dto RecordValuationDTO) (*models.ValuationLog, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	var batch models.ACCU
	if err := tx.First(&batch, batchID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("batch", batchID)
		}
		return nil, fmt.Errorf("fetching batch: %w", err)
	}

	entry := &models.ValuationLog{
		BatchID:       batchID,
		MarketValue:   dto.MarketValue,
		ValuationDate: dto.ValuationDate,
		Source:        dto.Source,
		Notes:         dto.Notes,
	}
	if err := tx.Create(entry).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating valuation log entry: %w", err)
	}

	if dto.MarketValue < batch.AcquisitionCost && batch.Status == models.BatchStatusActive {
		batch.Status = models.BatchStatusImpaired
		if err := tx.Save(&batch).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("marking batch impaired: %w", err)
		}
		utils.LogInfo("Batch %s impaired: market value %.2f below cost %.2f",
			batch.BatchNumber, dto.MarketValue, batch.AcquisitionCost)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return entry, nil
}

// referenceExists verifies that a referenced registry row exists
func referenceExists(tx *gorm.DB, model interface{}, id uint, name string) error {
	if err := tx.First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError(name, id)
		}
		return fmt.Errorf("checking %s reference: %w", name, err)
	}
	return nil
}
