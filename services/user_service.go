package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accu-registry/apperrors"
	"accu-registry/models"
)

// UserService provides user registration and lookup
type UserService struct {
	db *gorm.DB
}

// UserDTO is the external representation of a user
type UserDTO struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Roles    string `json:"roles"`
	EntityID *uint  `json:"entityId"`
}

// CreateUserRequest represents a registration request
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Roles    string `json:"roles" validate:"omitempty,oneof=admin user"`
	EntityID *uint  `json:"entityId"`
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUserInternal registers a new user with a hashed password
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	var existingUser models.User
	if err := h.db.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error; err == nil {
		return nil, apperrors.NewConflictError("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	if req.EntityID != nil {
		if err := referenceExists(h.db, &models.Entity{}, *req.EntityID, "entity"); err != nil {
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	roles := models.UserRole(req.Roles)
	if req.Roles == "" {
		roles = models.UserRoleUser
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		Roles:    roles,
		EntityID: req.EntityID,
	}

	if err := h.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// FindByEmail finds a user by email, ignoring case and whitespace
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user", 0)
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &user, nil
}

// FindByID finds a user by id
func (h *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &user, nil
}

// ToDTO converts a user model to its external representation
func (h *UserService) ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		Roles:    string(user.Roles),
		EntityID: user.EntityID,
	}
}
