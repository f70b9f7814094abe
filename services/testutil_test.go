package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"accu-registry/models"
)

// newTestDB opens an isolated in-memory database migrated with the full
// registry schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Entity{},
		&models.User{},
		&models.Creditor{},
		&models.Project{},
		&models.ACCU{},
		&models.Loan{},
		&models.ReclassificationRequest{},
		&models.MarketPrice{},
		&models.ValuationLog{},
	)
	require.NoError(t, err)

	return db
}

// seedRegistry inserts the reference rows every lifecycle test needs
func seedRegistry(t *testing.T, db *gorm.DB) (entity models.Entity, user models.User, creditor models.Creditor, project models.Project) {
	t.Helper()

	entity = models.Entity{Name: "Tasman Carbon Pty Ltd"}
	require.NoError(t, db.Create(&entity).Error)

	user = models.User{
		Email:    "ops@tasmancarbon.example",
		Password: "not-a-real-hash",
		Roles:    models.UserRoleAdmin,
		EntityID: &entity.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	creditor = models.Creditor{Name: "Jarden Securities"}
	require.NoError(t, db.Create(&creditor).Error)

	project = models.Project{
		Name:       "Mulga Lands Regeneration",
		Method:     models.ProjectMethodVegetation,
		MethodType: models.MethodTypeSequestering,
	}
	require.NoError(t, db.Create(&project).Error)

	return entity, user, creditor, project
}

// seedBatch inserts a batch with a consistent serial range
func seedBatch(t *testing.T, db *gorm.DB, entity models.Entity, user models.User, project models.Project, batchNumber string, quantity int64) models.ACCU {
	t.Helper()

	batch := models.ACCU{
		BatchNumber:      batchNumber,
		Quantity:         quantity,
		AcquisitionCost:  28.50,
		Classification:   models.ClassificationInventory,
		Status:           models.BatchStatusActive,
		AcquisitionDate:  time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
		IssuanceDate:     time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Vintage:          "2022",
		Location:         "Queensland, Australia",
		Category:         "Human-Induced Regeneration",
		SerialRangeStart: "1000000",
		SerialRangeEnd:   fmt.Sprintf("%d", 1000000+quantity-1),
		EntityID:         entity.ID,
		UserID:           user.ID,
		ProjectID:        project.ID,
	}
	require.NoError(t, db.Create(&batch).Error)
	return batch
}
