package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accu-registry/apperrors"
	"accu-registry/models"
)

func validCreateBatchDTO(entity models.Entity, user models.User, project models.Project) CreateBatchDTO {
	return CreateBatchDTO{
		BatchNumber:      "ACCU-202301-001",
		Quantity:         500,
		AcquisitionCost:  27.80,
		Classification:   "inventory",
		AcquisitionDate:  time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		IssuanceDate:     time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Vintage:          "2022",
		Location:         "New South Wales, Australia",
		Category:         "Generic",
		SerialRangeStart: "2000000",
		SerialRangeEnd:   "2000499",
		EntityID:         entity.ID,
		UserID:           user.ID,
		ProjectID:        project.ID,
	}
}

func TestBatchCreate(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch, err := service.Create(validCreateBatchDTO(entity, user, project))
	require.NoError(t, err)

	assert.Equal(t, models.BatchStatusActive, batch.Status)
	assert.Equal(t, models.ClassificationInventory, batch.Classification)

	fetched, err := service.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACCU-202301-001", fetched.BatchNumber)
	assert.Equal(t, int64(500), fetched.Quantity)
}

func TestBatchCreateSerialRangeMismatch(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	dto := validCreateBatchDTO(entity, user, project)
	dto.SerialRangeEnd = "2000500" // covers 501 units, quantity is 500

	_, err := service.Create(dto)
	require.Error(t, err)
	assert.Equal(t, "ValidationError", apperrors.Kind(err))
}

func TestBatchCreateSerialRangeNotNumeric(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	dto := validCreateBatchDTO(entity, user, project)
	dto.SerialRangeStart = "ABC123"

	_, err := service.Create(dto)
	require.Error(t, err)
	assert.Equal(t, "ValidationError", apperrors.Kind(err))
}

func TestBatchCreateDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	_, err := service.Create(validCreateBatchDTO(entity, user, project))
	require.NoError(t, err)

	_, err = service.Create(validCreateBatchDTO(entity, user, project))
	require.Error(t, err)
	assert.Equal(t, "ConflictError", apperrors.Kind(err))
}

func TestBatchCreateIssuanceAfterAcquisition(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	dto := validCreateBatchDTO(entity, user, project)
	dto.IssuanceDate = dto.AcquisitionDate.AddDate(0, 1, 0)

	_, err := service.Create(dto)
	require.Error(t, err)
	assert.Equal(t, "ValidationError", apperrors.Kind(err))
}

func TestBatchCreateUnknownProject(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, _ := seedRegistry(t, db)
	service := NewBatchService(db)

	dto := validCreateBatchDTO(entity, user, models.Project{ID: 9999})

	_, err := service.Create(dto)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBatchListFilters(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	seedBatch(t, db, entity, user, project, "ACCU-202301-010", 100)
	other := models.Entity{Name: "Other Holdings"}
	require.NoError(t, db.Create(&other).Error)
	seedBatch(t, db, other, user, project, "ACCU-202301-011", 200)

	batches, err := service.List(BatchFilter{EntityID: entity.ID})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "ACCU-202301-010", batches[0].BatchNumber)

	batches, err = service.List(BatchFilter{Classification: "fvtpl"})
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestBatchUpdateKeepsInvariant(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-020", 100)

	badQuantity := int64(150)
	_, err := service.Update(batch.ID, UpdateBatchDTO{Quantity: &badQuantity})
	require.Error(t, err)
	assert.Equal(t, "ValidationError", apperrors.Kind(err))

	// Adjusting quantity and the serial range together is allowed
	newEnd := "1000149"
	updated, err := service.Update(batch.ID, UpdateBatchDTO{Quantity: &badQuantity, SerialRangeEnd: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, int64(150), updated.Quantity)
}

func TestBatchUpdateCannotShrinkBelowPledge(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewBatchService(db)
	loanService := NewLoanService(db, nil)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-021", 1000)

	_, err := loanService.Create(validCreateLoanDTO(batch, creditor, entity, 600))
	require.NoError(t, err)

	// 500 < 600 pledged, even with a matching serial range
	newQuantity := int64(500)
	newEnd := "1000499"
	_, err = service.Update(batch.ID, UpdateBatchDTO{Quantity: &newQuantity, SerialRangeEnd: &newEnd})
	require.Error(t, err)
	assert.Equal(t, "ConflictError", apperrors.Kind(err))

	unchanged, err := service.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), unchanged.Quantity)

	// Shrinking down to exactly the pledged sum is allowed
	newQuantity = 600
	newEnd = "1000599"
	updated, err := service.Update(batch.ID, UpdateBatchDTO{Quantity: &newQuantity, SerialRangeEnd: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, int64(600), updated.Quantity)
}

func TestBatchDeleteBlockedByLoan(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-030", 100)
	loan := models.Loan{
		BatchID:         batch.ID,
		CreditorID:      creditor.ID,
		Quantity:        50,
		LoanAmount:      1000,
		BuybackRate:     6.5,
		BuybackDate:     time.Now().AddDate(0, 6, 0),
		CollateralValue: 1400,
		EntityID:        entity.ID,
		Status:          models.LoanStatusActive,
	}
	require.NoError(t, db.Create(&loan).Error)

	err := service.Delete(batch.ID)
	require.Error(t, err)
	assert.Equal(t, "ConflictError", apperrors.Kind(err))
}

func TestBatchDeleteBlockedByPendingReclassification(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-031", 100)
	request := models.ReclassificationRequest{
		BatchID:       batch.ID,
		FromClass:     models.ClassificationInventory,
		ToClass:       models.ClassificationIntangible,
		Reason:        "NRV below cost",
		Status:        models.ReclassificationPending,
		SubmittedByID: user.ID,
		EntityID:      entity.ID,
	}
	require.NoError(t, db.Create(&request).Error)

	err := service.Delete(batch.ID)
	require.Error(t, err)
	assert.Equal(t, "ConflictError", apperrors.Kind(err))

	// A decided request no longer blocks deletion
	request.Status = models.ReclassificationRejected
	require.NoError(t, db.Save(&request).Error)
	require.NoError(t, service.Delete(batch.ID))
}

func TestRecordValuationImpairsBatch(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-040", 100)

	entry, err := service.RecordValuation(batch.ID, RecordValuationDTO{
		MarketValue:   25.00, // below the 28.50 acquisition cost
		ValuationDate: time.Now(),
		Source:        "Jarden",
	})
	require.NoError(t, err)
	assert.Equal(t, batch.ID, entry.BatchID)

	updated, err := service.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusImpaired, updated.Status)
}

func TestRecordValuationAboveCostLeavesStatus(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-041", 100)

	_, err := service.RecordValuation(batch.ID, RecordValuationDTO{
		MarketValue:   32.00,
		ValuationDate: time.Now(),
	})
	require.NoError(t, err)

	updated, err := service.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusActive, updated.Status)
}
