package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encoding response: %v", err)
	}
}

// writeMessage writes a JSON {"message": ...} response.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeServerError logs the cause and writes a generic 500. Internal
// details never reach the client.
func writeServerError(w http.ResponseWriter, err error) {
	log.Printf("handlers: internal error: %v", err)
	writeMessage(w, http.StatusInternalServerError, "Something went wrong")
}

// logMailFailure records a non-fatal mail delivery failure.
func logMailFailure(err error) {
	log.Printf("handlers: mail notification failed: %v", err)
}

// decodeJSON decodes a request body into v. Bodies over 1 MiB are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
