package handlers

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email, role string) (*models.User, error)
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Username and email must be unique. Password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body models.RegisterRequest true "User registration request"
// @Success 201 {object} models.RegisterResponse "User created"
// @Failure 400 {object} models.MessageResponse "Invalid request, missing fields, invalid username, username or email already exists"
// @Failure 500 {object} models.MessageResponse "Internal server error"
// @Router /api/users/create [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password, req.Email, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				writeMessage(w, http.StatusBadRequest, "Username, password and email are required")
			case errors.Is(err, services.ErrInvalidUsername):
				writeMessage(w, http.StatusBadRequest, "Invalid username")
			case errors.Is(err, services.ErrUsernameTaken):
				writeMessage(w, http.StatusBadRequest, "Username already exists")
			case errors.Is(err, services.ErrEmailTaken):
				writeMessage(w, http.StatusBadRequest, "Email already exists")
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeMessage(w, http.StatusBadRequest, "Username or email already exists")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeMessage(w, http.StatusInternalServerError, msgInternalError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, models.RegisterResponse{
			Message: "User created successfully",
			User:    user,
		})
	}
}
