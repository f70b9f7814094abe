package controllers

import (
	"net/http"

	"accu-registry/database"
	"accu-registry/services"
	"accu-registry/utils"
)

// SystemController handles health, metrics and report requests
type SystemController struct {
	reportService *services.ReportService
}

// NewSystemController creates a new SystemController
func NewSystemController(db *database.Database) *SystemController {
	return &SystemController{
		reportService: services.NewReportService(db.DB),
	}
}

// Health handles GET /health
func (c *SystemController) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Metrics handles GET /api/metrics
func (c *SystemController) Metrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}

// HoldingsReport handles GET /api/reports/holdings
func (c *SystemController) HoldingsReport(w http.ResponseWriter, r *http.Request) {
	entityID, err := queryUint(r, "entityId")
	if err != nil {
		respondError(w, err)
		return
	}

	report, err := c.reportService.HoldingsReportXML(entityID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}
