package api

import (
	"errors"
	"net/http"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- DTOs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TherapistResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	Therapist TherapistResponse `json:"therapist"`
}

func mapTherapistToResponse(t *domain.Therapist) TherapistResponse {
	if t == nil {
		return TherapistResponse{}
	}
	return TherapistResponse{
		ID:        t.ID.Hex(),
		Name:      t.Name,
		Email:     t.Email,
		Role:      t.Role,
		CreatedAt: t.CreatedAt,
	}
}

// --- Handler Methods ---

// Register creates a new therapist account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	therapist, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrTherapistAlreadyExists) {
			abortWithError(c, http.StatusConflict, "An account with this email already exists.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to register account.")
		}
		return
	}

	c.JSON(http.StatusCreated, mapTherapistToResponse(therapist))
}

// Login authenticates a therapist and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, therapist, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, "Invalid email or password.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Login failed.")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Therapist: mapTherapistToResponse(therapist),
	})
}
