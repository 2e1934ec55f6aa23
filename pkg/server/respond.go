package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scrapmap/scrapmap/pkg/identity"
)

type errorResponse struct {
	status  int
	message string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encoding response: %s", err)
	}
}

// writeMessage writes the uniform error body: {"message": <string>}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// serverError logs the full error server-side and returns only a generic
// message to the caller.
func serverError(w http.ResponseWriter, message string, err error) {
	log.Errorf("request failed: %s", err)
	writeMessage(w, http.StatusInternalServerError, message)
}

// respondUpstream maps a tagged identity provider error to a response. Kinds
// absent from the mapping collapse to a 500 with the fallback message; the
// original error is only ever logged.
func respondUpstream(w http.ResponseWriter, err error, mapping map[identity.ErrorKind]errorResponse, fallback string) {
	log.Errorf("identity operation failed: %s", err)
	if resp, ok := mapping[identity.KindOf(err)]; ok {
		writeMessage(w, resp.status, resp.message)
		return
	}
	writeMessage(w, http.StatusInternalServerError, fallback)
}

// writeAuthResult writes the reshaped outcome of an authentication flow:
// either a token set or the challenge the caller must answer next.
func writeAuthResult(w http.ResponseWriter, result identity.AuthResult) {
	if result.Tokens != nil {
		writeJSON(w, http.StatusOK, result.Tokens)
		return
	}
	writeJSON(w, http.StatusOK, result.Challenge)
}

type field struct {
	name  string
	value string
}

// decodeBody parses the JSON request body, replying 400 on malformed input
// and when any required field is absent. It reports whether the handler may
// proceed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, required func() []field) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Request Body")
		return false
	}
	for _, f := range required() {
		if f.value == "" {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid Request Body: missing field %q", f.name))
			return false
		}
	}
	return true
}

// requireQuery fetches a required query parameter, replying 400 when absent.
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid Request: missing query parameter %q", name))
		return "", false
	}
	return value, true
}
