package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accu-registry/apperrors"
	"accu-registry/models"
)

func validCreateLoanDTO(batch models.ACCU, creditor models.Creditor, entity models.Entity, quantity int64) CreateLoanDTO {
	return CreateLoanDTO{
		BatchID:         batch.ID,
		CreditorID:      creditor.ID,
		Quantity:        quantity,
		LoanAmount:      15000,
		BuybackRate:     6.5,
		BuybackDate:     time.Now().AddDate(0, 6, 0),
		CollateralValue: 17000,
		EntityID:        entity.ID,
	}
}

func TestLoanCollateralScenario(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)
	batchService := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-100", 1000)

	// Loan A for 600 units succeeds and puts the batch on loan
	loanA, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 600))
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, loanA.Status)

	updated, err := batchService.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusOnLoan, updated.Status)

	// Loan B for 500 units over-pledges: 600 + 500 > 1000
	_, err = service.Create(validCreateLoanDTO(batch, creditor, entity, 500))
	require.Error(t, err)
	assert.Equal(t, "InsufficientCollateral", apperrors.Kind(err))

	// Repaying loan A releases the pledge and reactivates the batch
	repaid, err := service.Repay(loanA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusRepaid, repaid.Status)
	require.NotNil(t, repaid.RepaidAt)

	updated, err = batchService.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusActive, updated.Status)

	// Loan B for 500 units now fits
	loanB, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 500))
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, loanB.Status)
}

func TestLoanExactlyFullPledge(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-101", 300)

	_, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 300))
	require.NoError(t, err)

	// Even a single extra unit is over-pledging
	_, err = service.Create(validCreateLoanDTO(batch, creditor, entity, 1))
	require.Error(t, err)
	assert.Equal(t, "InsufficientCollateral", apperrors.Kind(err))
}

func TestLoanBatchStaysOnLoanWhileOthersActive(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)
	batchService := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-102", 1000)

	loanA, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 400))
	require.NoError(t, err)
	_, err = service.Create(validCreateLoanDTO(batch, creditor, entity, 300))
	require.NoError(t, err)

	_, err = service.Repay(loanA.ID)
	require.NoError(t, err)

	updated, err := batchService.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusOnLoan, updated.Status)
}

func TestLoanRepayTerminalFails(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-103", 100)

	loan, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 50))
	require.NoError(t, err)

	_, err = service.Repay(loan.ID)
	require.NoError(t, err)

	_, err = service.Repay(loan.ID)
	require.Error(t, err)
	assert.Equal(t, "InvalidStateTransition", apperrors.Kind(err))
}

func TestLoanDefaultReleasesPledge(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)
	batchService := NewBatchService(db)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-104", 100)

	loan, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 100))
	require.NoError(t, err)

	defaulted, err := service.MarkDefaulted(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusDefaulted, defaulted.Status)
	assert.Nil(t, defaulted.RepaidAt)

	updated, err := batchService.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusActive, updated.Status)

	// Default is terminal
	_, err = service.Repay(loan.ID)
	require.Error(t, err)
	assert.Equal(t, "InvalidStateTransition", apperrors.Kind(err))
}

func TestLoanUnknownBatch(t *testing.T) {
	db := newTestDB(t)
	entity, _, creditor, _ := seedRegistry(t, db)
	service := NewLoanService(db, nil)

	dto := validCreateLoanDTO(models.ACCU{ID: 9999}, creditor, entity, 10)
	_, err := service.Create(dto)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLoanListByStatus(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewLoanService(db, nil)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-105", 1000)

	loanA, err := service.Create(validCreateLoanDTO(batch, creditor, entity, 100))
	require.NoError(t, err)
	_, err = service.Create(validCreateLoanDTO(batch, creditor, entity, 200))
	require.NoError(t, err)

	_, err = service.Repay(loanA.ID)
	require.NoError(t, err)

	active, err := service.List(LoanFilter{BatchID: batch.ID, Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(200), active[0].Quantity)

	repaid, err := service.List(LoanFilter{Status: "repaid"})
	require.NoError(t, err)
	assert.Len(t, repaid, 1)
}
