package services

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"gorm.io/gorm"

	"accu-registry/models"
)

// ReportService renders registry reports. The holdings report is the XML
// document the accounting team files alongside ANREU statements.
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportService
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// HoldingsReportXML renders all batches (optionally one entity's) as an XML
// holdings report, including per-batch pledged quantities.
func (s *ReportService) HoldingsReportXML(entityID uint) ([]byte, error) {
	query := s.db.Model(&models.ACCU{}).Preload("Project").Order("batch_number ASC")
	if entityID != 0 {
		query = query.Where("entity_id = ?", entityID)
	}

	var batches []models.ACCU
	if err := query.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("fetching batches for report: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("holdingsReport")
	root.CreateAttr("generatedAt", time.Now().UTC().Format(time.RFC3339))
	if entityID != 0 {
		root.CreateAttr("entityId", fmt.Sprintf("%d", entityID))
	}

	var totalUnits int64
	for _, batch := range batches {
		pledged, err := pledgedQuantity(s.db, batch.ID)
		if err != nil {
			return nil, err
		}

		b := root.CreateElement("batch")
		b.CreateAttr("number", batch.BatchNumber)
		b.CreateElement("quantity").SetText(fmt.Sprintf("%d", batch.Quantity))
		b.CreateElement("pledged").SetText(fmt.Sprintf("%d", pledged))
		b.CreateElement("classification").SetText(string(batch.Classification))
		b.CreateElement("status").SetText(string(batch.Status))
		b.CreateElement("vintage").SetText(batch.Vintage)
		b.CreateElement("project").SetText(batch.Project.Name)
		serials := b.CreateElement("serialRange")
		serials.CreateAttr("start", batch.SerialRangeStart)
		serials.CreateAttr("end", batch.SerialRangeEnd)
		b.CreateElement("acquisitionCost").SetText(fmt.Sprintf("%.2f", batch.AcquisitionCost))

		totalUnits += batch.Quantity
	}

	root.CreateElement("totalUnits").SetText(fmt.Sprintf("%d", totalUnits))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing report: %w", err)
	}
	return out, nil
}
