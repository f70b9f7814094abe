package controllers

import (
	"net/http"

	"accu-registry/database"
	"accu-registry/middleware"
	"accu-registry/services"
)

// ReclassificationController handles reclassification workflow requests
type ReclassificationController struct {
	reclassificationService *services.ReclassificationService
}

// NewReclassificationController creates a new ReclassificationController
func NewReclassificationController(db *database.Database, email *services.EmailService) *ReclassificationController {
	return &ReclassificationController{
		reclassificationService: services.NewReclassificationService(db.DB, email),
	}
}

// SubmitRequest handles POST /api/reclassifications
func (c *ReclassificationController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.SubmitReclassificationDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}
	dto.UserID = userID

	request, err := c.reclassificationService.Submit(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// GetRequests handles GET /api/reclassifications
func (c *ReclassificationController) GetRequests(w http.ResponseWriter, r *http.Request) {
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

	filter := services.ReclassificationFilter{
		EntityID: entityID,
		BatchID:  batchID,
		Status:   r.URL.Query().Get("status"),
	}

	requests, err := c.reclassificationService.List(filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /api/reclassifications/{id}
func (c *ReclassificationController) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := c.reclassificationService.GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// ApproveRequest handles POST /api/reclassifications/{id}/approve
func (c *ReclassificationController) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := c.reclassificationService.Approve(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// RejectRequest handles POST /api/reclassifications/{id}/reject
func (c *ReclassificationController) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := c.reclassificationService.Reject(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}
