package handlers

//go:generate mockgen -source=logout.go -destination=logout_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/middlewares"
)

// Logouter defines the interface that the logout service must implement.
type Logouter interface {
	Logout(ctx context.Context, userID uuid.UUID) error
}

// NewLogoutHandler returns an HTTP handler for user logout.
// Tokens are stateless; the call only records the logout.
// @Summary User logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse "Logged out successfully"
// @Failure 401 "Missing or invalid token"
// @Failure 500 {object} models.MessageResponse "Internal server error"
// @Router /api/users/logout [post]
func NewLogoutHandler(svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.ClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if err := svc.Logout(r.Context(), claims.UserID); err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeMessage(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		writeMessage(w, http.StatusOK, "Logged out successfully")
	}
}
