package utils

import (
	"encoding/json"
	"net/http"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]any{"success": false, "error": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithData wraps a payload in the {success, data} envelope every
// list/detail endpoint uses.
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondWithJSON(w, statusCode, map[string]any{"success": true, "data": data})
}

type M map[string]interface{}
