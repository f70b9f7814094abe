package controllers

import (
	"net/http"

	"accu-registry/database"
	"accu-registry/services"
)

// LoanController handles loan ledger requests
type LoanController struct {
	loanService *services.LoanService
}

// NewLoanController creates a new LoanController
func NewLoanController(db *database.Database, email *services.EmailService) *LoanController {
	return &LoanController{
		loanService: services.NewLoanService(db.DB, email),
	}
}

// CreateLoan handles POST /api/loans
func (c *LoanController) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateLoanDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	loan, err := c.loanService.Create(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, loan)
}

// GetLoans handles GET /api/loans
func (c *LoanController) GetLoans(w http.ResponseWriter, r *http.Request) {
	entityID, err := queryUint(r, "entityId")
	if err != nil {
		respondError(w, err)
		return
	}
	batchID, err := queryUint(r, "batchId")
	if err != nil {
		respondError(w, err)
		return
	}

	filter := services.LoanFilter{
		EntityID: entityID,
		BatchID:  batchID,
		Status:   r.URL.Query().Get("status"),
	}

	loans, err := c.loanService.List(filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loans)
}

// GetLoan handles GET /api/loans/{id}
func (c *LoanController) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loan, err := c.loanService.GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loan)
}

// RepayLoan handles POST /api/loans/{id}/repay
func (c *LoanController) RepayLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loan, err := c.loanService.Repay(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loan)
}

// DefaultLoan handles POST /api/loans/{id}/default
func (c *LoanController) DefaultLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loan, err := c.loanService.MarkDefaulted(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loan)
}
