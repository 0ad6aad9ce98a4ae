package web

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON sends a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// errorJSON sends an error envelope.
func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// serverError logs the underlying error and sends a generic 500.
func serverError(w http.ResponseWriter, err error) {
	log.Printf("Internal server error: %v", err)
	errorJSON(w, http.StatusInternalServerError, "internal server error")
}

// readJSON decodes a request body into dst, rejecting unknown fields.
func readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
