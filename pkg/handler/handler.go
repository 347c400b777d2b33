// Package handler exposes the buddy pipeline over HTTP JSON.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
)

const (
	// MaxBodyBytes caps request bodies
	MaxBodyBytes = 1 << 20

	// Path parameters
	ParamUserID         = "userID"
	ParamNotificationID = "notificationID"
)

// errBadRequest marks client input errors
var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps pipeline errors to HTTP status codes. Anything unrecognized
// is a store failure and reported as unavailable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNotOnboarded):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrAlreadyOnboarded):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnknownIntent), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// userID reads the user path parameter
func userID(r *http.Request) (string, error) {
	id := r.PathValue(ParamUserID)
	if id == "" {
		return "", fmt.Errorf("%w: missing user id", errBadRequest)
	}
	return id, nil
}
