package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accu-registry/models"
)

func TestDueLoansWindow(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	loanService := NewLoanService(db, nil)
	scheduler := NewBuybackSchedulerService(db, nil, 7)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-500", 1000)

	dueSoon := validCreateLoanDTO(batch, creditor, entity, 100)
	dueSoon.BuybackDate = time.Now().AddDate(0, 0, 3)
	soon, err := loanService.Create(dueSoon)
	require.NoError(t, err)

	overdue := validCreateLoanDTO(batch, creditor, entity, 100)
	overdue.BuybackDate = time.Now().AddDate(0, 0, -2)
	_, err = loanService.Create(overdue)
	require.NoError(t, err)

	farOut := validCreateLoanDTO(batch, creditor, entity, 100)
	farOut.BuybackDate = time.Now().AddDate(0, 2, 0)
	_, err = loanService.Create(farOut)
	require.NoError(t, err)

	due, err := scheduler.DueLoans(time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Oldest buyback date first, with the batch and its owner preloaded
	assert.True(t, due[0].BuybackDate.Before(due[1].BuybackDate))
	assert.Equal(t, "ACCU-202301-500", due[0].Batch.BatchNumber)
	assert.Equal(t, user.Email, due[0].Batch.User.Email)

	// A repaid loan drops out of the reminder set
	_, err = loanService.Repay(soon.ID)
	require.NoError(t, err)

	due, err = scheduler.DueLoans(time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, models.LoanStatusActive, due[0].Status)
}

func TestProcessRemindersWithoutMailer(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	loanService := NewLoanService(db, nil)
	scheduler := NewBuybackSchedulerService(db, nil, 7)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-501", 100)

	dto := validCreateLoanDTO(batch, creditor, entity, 50)
	dto.BuybackDate = time.Now().AddDate(0, 0, 1)
	loan, err := loanService.Create(dto)
	require.NoError(t, err)

	// Reminders never change loan state
	require.NoError(t, scheduler.ProcessReminders())

	unchanged, err := loanService.GetByID(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, unchanged.Status)
}
