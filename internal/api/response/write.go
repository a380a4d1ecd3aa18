package response

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every successful payload
type Envelope struct {
	Data any `json:"data"`
}

// JSON writes a JSON response wrapped in the data envelope
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Data: data})
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
