package controllers

import (
	"net/http"

	"accu-registry/database"
	"accu-registry/services"
)

// RegistryController handles reference-data requests: entities, creditors
// and projects
type RegistryController struct {
	registryService *services.RegistryService
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(db *database.Database) *RegistryController {
	return &RegistryController{
		registryService: services.NewRegistryService(db.DB),
	}
}

// CreateEntity handles POST /api/entities
func (c *RegistryController) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateEntityDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	entity, err := c.registryService.CreateEntity(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entity)
}

// GetEntities handles GET /api/entities
func (c *RegistryController) GetEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := c.registryService.ListEntities()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entities)
}

// GetEntity handles GET /api/entities/{id}
func (c *RegistryController) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	entity, err := c.registryService.GetEntity(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entity)
}

// DeleteEntity handles DELETE /api/entities/{id}
func (c *RegistryController) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := c.registryService.DeleteEntity(id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Entity deleted successfully"})
}

// CreateCreditor handles POST /api/creditors
func (c *RegistryController) CreateCreditor(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateCreditorDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	creditor, err := c.registryService.CreateCreditor(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, creditor)
}

// GetCreditors handles GET /api/creditors
func (c *RegistryController) GetCreditors(w http.ResponseWriter, r *http.Request) {
	creditors, err := c.registryService.ListCreditors()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, creditors)
}

// GetCreditor handles GET /api/creditors/{id}
func (c *RegistryController) GetCreditor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	creditor, err := c.registryService.GetCreditor(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, creditor)
}

// CreateProject handles POST /api/projects
func (c *RegistryController) CreateProject(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateProjectDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, err)
		return
	}

	project, err := c.registryService.CreateProject(dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

// GetProjects handles GET /api/projects
func (c *RegistryController) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := c.registryService.ListProjects()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/projects/{id}
func (c *RegistryController) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	project, err := c.registryService.GetProject(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}
