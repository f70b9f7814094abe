package controllers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"accu-registry/apperrors"
	"accu-registry/config"
	"accu-registry/database"
	"accu-registry/services"
)

// AuthController handles registration and sign-in
type AuthController struct {
	userService *services.UserService
	validate    *validator.Validate
	config      *config.Config
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Roles  string `json:"roles"`
	jwt.RegisteredClaims
}

type Token struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID uint   `json:"userId"`
}

// NewAuthController creates a new AuthController
func NewAuthController(db *database.Database, cfg *config.Config) *AuthController {
	return &AuthController{
		userService: services.NewUserService(db.DB),
		validate:    validator.New(),
		config:      cfg,
	}
}

// GetJWTKey returns the signing key for the auth middleware
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}

// SignUp handles user registration
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		respondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	user, err := c.userService.CreateUserInternal(req)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := c.issueToken(user.ID, user.Email, string(user.Roles))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Token{
		Token:  token,
		Email:  user.Email,
		UserID: user.ID,
	})
}

// SignIn handles user authentication
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		respondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	user, err := c.userService.FindByEmail(req.Email)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "invalid email or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "invalid email or password",
		})
		return
	}

	token, err := c.issueToken(user.ID, user.Email, string(user.Roles))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Token{
		Token:  token,
		Email:  user.Email,
		UserID: user.ID,
	})
}

// issueToken signs a JWT for the user
func (c *AuthController) issueToken(userID uint, email, roles string) (string, error) {
	expiresAt := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.JWT.SecretKey))
}
