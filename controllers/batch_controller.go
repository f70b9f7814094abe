package controllers

import (
	"net/http"

	"accu-registry/database"
	"accu-registry/middleware"
	"accu-registry/services"
)

// BatchController handles ACCU batch ledger requests
type BatchController struct {
	batchService *services.BatchService
}

// NewBatchController creates a new BatchController
func NewBatchController(db *database.Database) *BatchController {
	return &BatchController{
		batchService: services.NewBatchService(db.DB),
	}
}

// CreateBatch handles POST /api/batches
func (c *BatchController) CreateBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.CreateBatchDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}
	dto.UserID = userID

	batch, err := c.batchService.Create(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, batch)
}

// GetBatches handles GET /api/batches
func (c *BatchController) GetBatches(w http.ResponseWriter, r *http.Request) {
	entityID, err := queryUint(r, "entityId")
	if err != nil {
		respondError(w, err)
		return
	}

	filter := services.BatchFilter{
		EntityID:       entityID,
		Classification: r.URL.Query().Get("classification"),
		Status:         r.URL.Query().Get("status"),
	}

	batches, err := c.batchService.List(filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batches)
}

// GetBatch handles GET /api/batches/{id}
func (c *BatchController) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	batch, err := c.batchService.GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}

// UpdateBatch handles PUT /api/batches/{id}
func (c *BatchController) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var dto services.UpdateBatchDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	batch, err := c.batchService.Update(id, dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}

// DeleteBatch handles DELETE /api/batches/{id}
func (c *BatchController) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := c.batchService.Delete(id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Batch deleted successfully"})
}

// RecordValuation handles POST /api/batches/{id}/valuations
func (c *BatchController) RecordValuation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var dto services.RecordValuationDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	entry, err := c.batchService.RecordValuation(id, dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}
