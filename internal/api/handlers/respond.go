package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/identity"
	"github.com/sirupsen/logrus"
)

// writeJSON serializes v with the right content type
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and a JSON message.
// Unrecognized errors are logged and reported as a plain 500 so
// internals never leak to clients.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	var status int
	message := err.Error()

	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrAuthRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, errs.ErrUpstream):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		logger.WithError(err).Error("Request failed")
	}

	writeJSON(w, status, map[string]string{"error": message})
}

// currentUser resolves the bearer token to a user id. A missing header
// yields the anonymous user; a token the store does not know is an
// authentication failure.
func currentUser(r *http.Request, sessions identity.Provider) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", errs.ErrAuthRequired
	}
	return sessions.Resolve(token)
}
