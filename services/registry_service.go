package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"accu-registry/apperrors"
	"accu-registry/models"
)

// CreateEntityDTO represents a new organization/tenant
type CreateEntityDTO struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CreateCreditorDTO represents a new loan counterparty
type CreateCreditorDTO struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CreateProjectDTO represents a new abatement project
type CreateProjectDTO struct {
	Name       string `json:"name" validate:"required,min=2,max=200"`
	Method     string `json:"method" validate:"required,oneof='Soil Carbon' 'Vegetation' 'Landfill Gas'"`
	MethodType string `json:"methodType" validate:"required,oneof=Sequestering Avoidance"`
}

// RegistryService provides CRUD over the reference data: entities,
// creditors and projects
type RegistryService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(db *gorm.DB) *RegistryService {
	return &RegistryService{
		db:        db,
		validator: validator.New(),
	}
}

// CreateEntity registers a new entity
func (s *RegistryService) CreateEntity(dto CreateEntityDTO) (*models.Entity, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}
	entity := &models.Entity{Name: dto.Name}
	if err := s.db.Create(entity).Error; err != nil {
		return nil, fmt.Errorf("creating entity: %w", err)
	}
	return entity, nil
}

// GetEntity returns an entity by id
func (s *RegistryService) GetEntity(id uint) (*models.Entity, error) {
	var entity models.Entity
	if err := s.db.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("entity", id)
		}
		return nil, fmt.Errorf("fetching entity: %w", err)
	}
	return &entity, nil
}

// ListEntities returns all entities
func (s *RegistryService) ListEntities() ([]models.Entity, error) {
	var entities []models.Entity
	if err := s.db.Order("name ASC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return entities, nil
}

// DeleteEntity removes an entity that nothing references
func (s *RegistryService) DeleteEntity(id uint) error {
	if _, err := s.GetEntity(id); err != nil {
		return err
	}

	// Every table carrying entity_id blocks deletion while rows remain
	referencing := []struct {
		model interface{}
		name  string
	}{
		{&models.ACCU{}, "batches"},
		{&models.User{}, "users"},
		{&models.Loan{}, "loans"},
		{&models.MarketPrice{}, "market prices"},
		{&models.ReclassificationRequest{}, "reclassification requests"},
	}
	for _, ref := range referencing {
		var count int64
		if err := s.db.Model(ref.model).Where("entity_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("counting %s: %w", ref.name, err)
		}
		if count > 0 {
			return apperrors.NewConflictError("entity is still referenced by " + ref.name)
		}
	}

	if err := s.db.Delete(&models.Entity{}, id).Error; err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	return nil
}

// CreateCreditor registers a new creditor
func (s *RegistryService) CreateCreditor(dto CreateCreditorDTO) (*models.Creditor, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}
	creditor := &models.Creditor{Name: dto.Name}
	if err := s.db.Create(creditor).Error; err != nil {
		return nil, fmt.Errorf("creating creditor: %w", err)
	}
	return creditor, nil
}

// GetCreditor returns a creditor by id
func (s *RegistryService) GetCreditor(id uint) (*models.Creditor, error) {
	var creditor models.Creditor
	if err := s.db.First(&creditor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("creditor", id)
		}
		return nil, fmt.Errorf("fetching creditor: %w", err)
	}
	return &creditor, nil
}

// ListCreditors returns all creditors
func (s *RegistryService) ListCreditors() ([]models.Creditor, error) {
	var creditors []models.Creditor
	if err := s.db.Order("name ASC").Find(&creditors).Error; err != nil {
		return nil, fmt.Errorf("listing creditors: %w", err)
	}
	return creditors, nil
}

// CreateProject registers a new abatement project
func (s *RegistryService) CreateProject(dto CreateProjectDTO) (*models.Project, error) {
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}
	project := &models.Project{
		Name:       dto.Name,
		Method:     models.ProjectMethod(dto.Method),
		MethodType: models.ProjectMethodType(dto.MethodType),
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return project, nil
}

// GetProject returns a project by id
func (s *RegistryService) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("project", id)
		}
		return nil, fmt.Errorf("fetching project: %w", err)
	}
	return &project, nil
}

// ListProjects returns all projects
func (s *RegistryService) ListProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.Order("name ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}
