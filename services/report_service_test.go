package services

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingsReportXML(t *testing.T) {
	db := newTestDB(t)
	entity, user, creditor, project := seedRegistry(t, db)
	service := NewReportService(db)
	loanService := NewLoanService(db, nil)

	batch := seedBatch(t, db, entity, user, project, "ACCU-202301-300", 400)
	seedBatch(t, db, entity, user, project, "ACCU-202301-301", 100)

	_, err := loanService.Create(validCreateLoanDTO(batch, creditor, entity, 150))
	require.NoError(t, err)

	out, err := service.HoldingsReportXML(entity.ID)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	root := doc.SelectElement("holdingsReport")
	require.NotNil(t, root)
	assert.Equal(t, "500", root.SelectElement("totalUnits").Text())

	batches := root.SelectElements("batch")
	require.Len(t, batches, 2)

	first := batches[0]
	assert.Equal(t, "ACCU-202301-300", first.SelectAttrValue("number", ""))
	assert.Equal(t, "400", first.SelectElement("quantity").Text())
	assert.Equal(t, "150", first.SelectElement("pledged").Text())
	assert.Equal(t, "inventory", first.SelectElement("classification").Text())
	assert.Equal(t, "Mulga Lands Regeneration", first.SelectElement("project").Text())

	serials := first.SelectElement("serialRange")
	require.NotNil(t, serials)
	assert.Equal(t, "1000000", serials.SelectAttrValue("start", ""))
	assert.Equal(t, "1000399", serials.SelectAttrValue("end", ""))
}

func TestHoldingsReportFiltersByEntity(t *testing.T) {
	db := newTestDB(t)
	entity, user, _, project := seedRegistry(t, db)
	service := NewReportService(db)

	seedBatch(t, db, entity, user, project, "ACCU-202301-310", 100)

	out, err := service.HoldingsReportXML(entity.ID + 1)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	root := doc.SelectElement("holdingsReport")
	require.NotNil(t, root)
	assert.Empty(t, root.SelectElements("batch"))
	assert.Equal(t, "0", root.SelectElement("totalUnits").Text())
}
