package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/infrastructure/logger"
)

// ContextUserKey is where the auth middleware stores the caller's user id
const ContextUserKey = "user"

// Envelope is the body of every JSON response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Responder writes envelopes and maps domain errors to status codes.
// Error details are only attached when ExposeDetails is set.
type Responder struct {
	ExposeDetails bool
	Logger        *logger.Logger
}

// OK writes a success envelope
func (r Responder) OK(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Fail writes a failure envelope for err
func (r Responder) Fail(c echo.Context, err error) error {
	status, body := r.describe(err)
	if status >= http.StatusInternalServerError {
		r.Logger.Errorw("Request failed",
			"error", err,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}
	return c.JSON(status, body)
}

func (r Responder) describe(err error) (int, Envelope) {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Envelope{Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, entities.ErrEventNotFound):
		return http.StatusNotFound, Envelope{Message: "Event not found or you do not have permission"}
	case errors.Is(err, entities.ErrRecipeNotFound):
		return http.StatusNotFound, Envelope{Message: "Recipe not found"}
	case errors.Is(err, entities.ErrUserNotFound):
		return http.StatusNotFound, Envelope{Message: "User not found"}
	case errors.Is(err, entities.ErrEmailTaken):
		return http.StatusBadRequest, Envelope{Message: "Email is already registered"}
	case errors.Is(err, entities.ErrInvalidCredentials):
		return http.StatusUnauthorized, Envelope{Message: "Invalid credentials"}
	}

	body := Envelope{Message: "Internal server error"}
	if r.ExposeDetails {
		body.Error = err.Error()
	}
	return http.StatusInternalServerError, body
}

// BadRequest writes a 400 envelope with message
func (r Responder) BadRequest(c echo.Context, message string, err error) error {
	body := Envelope{Message: message}
	if r.ExposeDetails && err != nil {
		body.Error = err.Error()
	}
	return c.JSON(http.StatusBadRequest, body)
}

// getUserIDFromContext extracts the caller's id set by the auth middleware
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userIDStr, ok := c.Get(ContextUserKey).(string)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	return userID, nil
}

// parseID reads a positive integer path parameter.
// Anything else is reported as notFound so ids cannot be probed.
func parseID(c echo.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", notFound, name, c.Param(name))
	}
	return id, nil
}
