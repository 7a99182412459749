package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON response shape.
type Envelope struct {
	Status int    `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WriteJSON writes payload wrapped in the response envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: status, Data: payload})
}

// WriteError translates err to an HTTP status and writes an error envelope.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}
	_ = json.NewEncoder(w).Encode(Envelope{Status: status, Error: message})
}
