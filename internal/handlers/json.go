package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
)

const msgInternalError = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Message: msg})
}
