package controllers

import (
	"net/http"
	"time"

	"accu-registry/apperrors"
	"accu-registry/database"
	"accu-registry/services"
)

// MarketController handles market price ledger requests
type MarketController struct {
	marketService *services.MarketService
}

// NewMarketController creates a new MarketController
func NewMarketController(db *database.Database) *MarketController {
	return &MarketController{
		marketService: services.NewMarketService(db.DB),
	}
}

// CreateMarketPrice handles POST /api/marketdata
func (c *MarketController) CreateMarketPrice(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateMarketPriceDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	price, err := c.marketService.Create(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, price)
}

// GetMarketPrices handles GET /api/marketdata
func (c *MarketController) GetMarketPrices(w http.ResponseWriter, r *http.Request) {
	entityID, err := queryUint(r, "entityId")
	if err != nil {
		respondError(w, err)
		return
	}

	filter := services.MarketPriceFilter{EntityID: entityID}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("from must be a YYYY-MM-DD date"))
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("to must be a YYYY-MM-DD date"))
			return
		}
		filter.To = to
	}

	prices, err := c.marketService.List(filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, prices)
}

// GetMarketPrice handles GET /api/marketdata/{id}
func (c *MarketController) GetMarketPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	price, err := c.marketService.GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, price)
}
