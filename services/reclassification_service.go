package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"accu-registry/apperrors"
	"accu-registry/models"
	"accu-registry/utils"
)

// SubmitReclassificationDTO represents a request to move a batch between
// accounting classifications
type SubmitReclassificationDTO struct {
	BatchID   uint   `json:"batchId" validate:"required"`
	FromClass string `json:"fromClass" validate:"required,oneof=inventory intangible fvtpl"`
	ToClass   string `json:"toClass" validate:"required,oneof=inventory intangible fvtpl"`
	Reason    string `json:"reason" validate:"required,max=500"`
	EntityID  uint   `json:"entityId" validate:"required"`
	UserID    uint   `json:"-"`
}

// ReclassificationFilter narrows request listings
type ReclassificationFilter struct {
	EntityID uint
	BatchID  uint
	Status   string
}

// ReclassificationService provides the reclassification request workflow
type ReclassificationService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewReclassificationService creates a new ReclassificationService
func NewReclassificationService(db *gorm.DB, email *EmailService) *ReclassificationService {
	return &ReclassificationService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// Submit creates a pending reclassification request. fromClass must match
// the batch's classification at this instant, and a batch carries at most
// one pending request at a time.
func (s *ReclassificationService) Submit(dto SubmitReclassificationDTO) (*models.ReclassificationRequest, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	if dto.FromClass == dto.ToClass {
		return nil, apperrors.NewValidationError("toClass must differ from fromClass")
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

	if string(batch.Classification) != dto.FromClass {
		tx.Rollback()
		return nil, apperrors.NewClassificationMismatchError(dto.FromClass, string(batch.Classification))
	}

	var pendingCount int64
	if err := tx.Model(&models.ReclassificationRequest{}).
		Where("batch_id = ? AND status = ?", dto.BatchID, models.ReclassificationPending).
		Count(&pendingCount).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("counting pending requests: %w", err)
	}
	if pendingCount > 0 {
		tx.Rollback()
		return nil, apperrors.NewConflictError("batch already has a pending reclassification request")
	}

	request := &models.ReclassificationRequest{
		BatchID:       dto.BatchID,
		FromClass:     models.Classification(dto.FromClass),
		ToClass:       models.Classification(dto.ToClass),
		Reason:        dto.Reason,
		Status:        models.ReclassificationPending,
		SubmittedByID: dto.UserID,
		EntityID:      dto.EntityID,
	}

	if err := tx.Create(request).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating reclassification request: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Reclassification request %d submitted for batch %s (%s -> %s)",
		request.ID, batch.BatchNumber, dto.FromClass, dto.ToClass)
	utils.GetMetrics().RecordLedgerOperation("reclassification_submit", nil)

	return request, nil
}

// Approve moves a pending request to approved and rewrites the batch's
// classification to toClass. Both writes happen in one transaction.
func (s *ReclassificationService) Approve(id uint) (*models.ReclassificationRequest, error) {
	request, err := s.decide(id, models.ReclassificationApproved)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(request)
	return request, nil
}

// Reject moves a pending request to rejected. The batch is untouched.
func (s *ReclassificationService) Reject(id uint) (*models.ReclassificationRequest, error) {
	request, err := s.decide(id, models.ReclassificationRejected)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(request)
	return request, nil
}

// decide applies a terminal decision to a pending request
func (s *ReclassificationService) decide(id uint, decision models.ReclassificationStatus) (*models.ReclassificationRequest, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	// Lock the request row so concurrent decisions cannot both pass the
	// terminal check
	var request models.ReclassificationRequest
	if err := lockForUpdate(tx).First(&request, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("reclassification request", id)
		}
		return nil, fmt.Errorf("fetching reclassification request: %w", err)
	}

	if request.Status.Terminal() {
		tx.Rollback()
		return nil, apperrors.NewInvalidStateTransitionError(
			"reclassification request", string(request.Status), string(decision))
	}

	if decision == models.ReclassificationApproved {
		batch, err := lockBatch(tx, request.BatchID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		batch.Classification = request.ToClass
		// on_loan and impaired are not overwritten by an approval
		if batch.Status == models.BatchStatusActive {
			batch.Status = models.BatchStatusReclassified
		}
		if err := tx.Save(batch).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("updating batch classification: %w", err)
		}
	}

	now := time.Now()
	request.Status = decision
	request.DecidedAt = &now
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating reclassification request: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	utils.LogInfo("Reclassification request %d %s", request.ID, decision)
	utils.GetMetrics().RecordLedgerOperation("reclassification_decide", nil)

	return &request, nil
}

// notifyDecision emails the submitter about a decision, best effort
func (s *ReclassificationService) notifyDecision(request *models.ReclassificationRequest) {
	if s.email == nil {
		return
	}
	var submitter models.User
	if err := s.db.First(&submitter, request.SubmittedByID).Error; err != nil {
		return
	}
	if err := s.email.SendReclassificationDecision(submitter.Email, request.ID, string(request.Status)); err != nil {
		utils.LogError("Sending reclassification decision notification for request %d: %v", request.ID, err)
	}
}

// GetByID returns a request by its id
func (s *ReclassificationService) GetByID(id uint) (*models.ReclassificationRequest, error) {
	var request models.ReclassificationRequest
	if err := s.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("reclassification request", id)
		}
		return nil, fmt.Errorf("fetching reclassification request: %w", err)
	}
	return &request, nil
}

// List returns requests matching the filter, newest first
func (s *ReclassificationService) List(filter ReclassificationFilter) ([]models.ReclassificationRequest, error) {
	query := s.db.Model(&models.ReclassificationRequest{}).Order("created_at DESC")
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.BatchID != 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var requests []models.ReclassificationRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("listing reclassification requests: %w", err)
	}
	return requests, nil
}
