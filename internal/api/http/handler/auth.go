package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/avrorin/identity-server/internal/api/http/middleware"
	"github.com/avrorin/identity-server/internal/logger"
	"github.com/avrorin/identity-server/internal/model"
)

var validate = validator.New()

// AuthService defines the authentication operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (model.User, model.Token, error)
	Profile(ctx context.Context, tokenString string) (model.User, error)
	Refresh(ctx context.Context, tokenString string) (model.Token, error)
	Logout(ctx context.Context, tokenString string) error
	LogoutAll(ctx context.Context, tokenString string) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserView is the client-facing projection of a user; the password hash
// never leaves the server.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func makeUserView(user model.User) UserView {
	return UserView{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

type RegisterResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

type LoginResponse struct {
	User    UserView `json:"user"`
	Token   string   `json:"token"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Success bool     `json:"success"`
}

type ProfileResponse struct {
	User    UserView `json:"user"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Success bool     `json:"success"`
}

type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Success bool   `json:"success"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Success bool   `json:"success"`
}

// Register creates a new user account.
func (h *Auth) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformedBody(c)
		return
	}
	if validationErrors := validateRequest(req); validationErrors != nil {
		respondValidationErrors(c, validationErrors)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("Auth handler: user registered", "user_id", user.ID)

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		Status:  http.StatusCreated,
		Success: true,
		UserID:  user.ID.String(),
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Auth) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformedBody(c)
		return
	}
	if validationErrors := validateRequest(req); validationErrors != nil {
		respondValidationErrors(c, validationErrors)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:    makeUserView(user),
		Token:   token.Value,
		Message: "User logged in successfully",
		Status:  http.StatusOK,
		Success: true,
	})
}

// Profile returns the user the presented token belongs to.
func (h *Auth) Profile(c *gin.Context) {
	tokenString, ok := middleware.BearerToken(c)
	if !ok {
		h.handleError(c, model.ErrUnauthenticated)
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), tokenString)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:    makeUserView(user),
		Message: "User profile retrieved successfully",
		Status:  http.StatusOK,
		Success: true,
	})
}

// RefreshToken exchanges the presented token for a fresh one. The old token
// is revoked; presenting it again fails.
func (h *Auth) RefreshToken(c *gin.Context) {
	tokenString, ok := middleware.BearerToken(c)
	if !ok {
		h.handleError(c, model.ErrUnauthenticated)
		return
	}

	token, err := h.authService.Refresh(c.Request.Context(), tokenString)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:   token.Value,
		Message: "Token refreshed successfully",
		Status:  http.StatusOK,
		Success: true,
	})
}

// Logout revokes the presented token. Logging out twice with the same token
// is not an error.
func (h *Auth) Logout(c *gin.Context) {
	tokenString, ok := middleware.BearerToken(c)
	if !ok {
		h.handleError(c, model.ErrUnauthenticated)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), tokenString); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "User logged out successfully",
		Status:  http.StatusOK,
		Success: true,
	})
}

// LogoutAll revokes every active token of the presenting user.
func (h *Auth) LogoutAll(c *gin.Context) {
	tokenString, ok := middleware.BearerToken(c)
	if !ok {
		h.handleError(c, model.ErrUnauthenticated)
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), tokenString); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "User logged out from all sessions",
		Status:  http.StatusOK,
		Success: true,
	})
}
