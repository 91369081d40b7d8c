package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	Responder
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, responder Responder) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		Responder:   responder,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return h.BadRequest(c, "Invalid request format", err)
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusCreated, response, "User registered successfully")
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.BadRequest(c, "Invalid request format", err)
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.Logger.LogSecurityEvent("login_failed", c.RealIP(), "email", req.Email, "error", err.Error())
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, response, "Login successful")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, user, "")
}
