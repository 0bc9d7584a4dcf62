package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeJSON writes an indented JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	setCORS(w)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// writeError maps err to a status code and writes {"error": message}.
// Unexpected errors are prefixed with prefix.
func writeError(w http.ResponseWriter, err error, prefix string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && prefix != "" {
		msg = fmt.Sprintf("%s: %s", prefix, msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	var (
		authErr     api.AuthenticationError
		notFound    api.NotFoundError
		validation  api.ValidationError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeLabels(body io.Reader) (api.LabelRecord, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var rec api.LabelRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid label body: %w", err)
	}
	if rec == nil {
		return nil, errors.New("label body must be a JSON object")
	}
	return rec, nil
}
