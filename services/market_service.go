package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"accu-registry/apperrors"
	"accu-registry/models"
)

// CreateMarketPriceDTO represents a price observation to append
type CreateMarketPriceDTO struct {
	Price         float64   `json:"price" validate:"required,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	CommodityType string    `json:"commodityType" validate:"omitempty,max=20"`
	Source        string    `json:"source" validate:"required,max=100"`
	EntityID      uint      `json:"entityId" validate:"required"`
}

// MarketPriceFilter narrows price listings to a date range and/or entity
type MarketPriceFilter struct {
	From     time.Time
	To       time.Time
	EntityID uint
}

// MarketService provides the append-only market price ledger. There are no
// update or delete operations; the ledger is a historical record.
type MarketService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewMarketService creates a new MarketService
func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{
		db:        db,
		validator: validator.New(),
	}
}

// Create appends a price observation
func (s *MarketService) Create(dto CreateMarketPriceDTO) (*models.MarketPrice, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	if dto.Date.After(time.Now().Add(24 * time.Hour)) {
		return nil, apperrors.NewValidationError("date must not be more than 24 hours in the future")
	}

	if dto.CommodityType == "" {
		dto.CommodityType = "ACCU"
	}

	if err := referenceExists(s.db, &models.Entity{}, dto.EntityID, "entity"); err != nil {
		return nil, err
	}

	price := &models.MarketPrice{
		Price:         dto.Price,
		Date:          dto.Date,
		CommodityType: dto.CommodityType,
		Source:        dto.Source,
		EntityID:      dto.EntityID,
	}

	if err := s.db.Create(price).Error; err != nil {
		return nil, fmt.Errorf("creating market price: %w", err)
	}

	return price, nil
}

// GetByID returns a price observation by its id
func (s *MarketService) GetByID(id uint) (*models.MarketPrice, error) {
	var price models.MarketPrice
	if err := s.db.First(&price, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("market price", id)
		}
		return nil, fmt.Errorf("fetching market price: %w", err)
	}
	return &price, nil
}

// List returns observations matching the filter, most recent date first
func (s *MarketService) List(filter MarketPriceFilter) ([]models.MarketPrice, error) {
	query := s.db.Model(&models.MarketPrice{}).Order("date DESC")
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", filter.To)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	var prices []models.MarketPrice
	if err := query.Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("listing market prices: %w", err)
	}
	return prices, nil
}
