package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/balri/busstop/internal/models"
)

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string, nearest *models.NearestStop) {
	writeJSON(w, code, models.ErrorResponse{
		Error:   msg,
		Nearest: nearest,
	})
}
