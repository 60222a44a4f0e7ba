package handlers

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, login, password string) (string, *models.User, error)
}

// NewLoginHandler returns an HTTP handler for user login.
// The login may be given as email or, for older clients, as username.
// @Summary User login
// @Description Authenticate a user and return a JWT token together with the user descriptor
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login Request"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} models.MessageResponse "Invalid request body"
// @Failure 401 {object} models.MessageResponse "Invalid email or password"
// @Failure 500 {object} models.MessageResponse "Internal server error"
// @Router /api/login [post]
// @Router /api/users/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		login := strings.TrimSpace(req.Email)
		if login == "" {
			login = strings.TrimSpace(req.Username)
		}
		if login == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		token, user, err := svc.Login(r.Context(), login, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials),
				errors.Is(err, services.ErrUserDoesNotExist):
				writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeMessage(w, http.StatusInternalServerError, msgInternalError)
			}
			return
		}

		writeJSON(w, http.StatusOK, models.LoginResponse{
			Message: "Login successful",
			Token:   token,
			User:    user,
		})
	}
}
