// internal/httpapi/respond.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
	"github.com/rovshanmuradov/clanker-launchpad/internal/discovery"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ipfs"
	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
)

const maxJSONBody = 1 << 20

// ErrNotConfigured marks a backend whose credentials are missing. Routes
// depending on it answer 503.
var ErrNotConfigured = errors.New("service not configured")

type errorResponse struct {
	Error  string                    `json:"error"`
	Fields []clanker.ValidationError `json:"fields,omitempty"`
}

// writeJSON encodes v before the status line goes out, so an encoding
// failure still reaches the client as a 500 with an error body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "response encoding failed"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, clanker.ErrInvalidConfig),
		errors.Is(err, ipfs.ErrEmptyImage),
		errors.Is(err, discovery.ErrInvalidWallet):
		return http.StatusBadRequest
	case errors.Is(err, clanker.ErrNonFiniteEstimate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ipfs.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ipfs.ErrImageTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotConfigured),
		errors.Is(err, ipfs.ErrMissingJWT),
		errors.Is(err, discovery.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if _, ok := upstream.AsError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeDomainError answers with the status statusFor picks. 5xx details
// other than upstream failures are not exposed.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if verrs, ok := clanker.AsValidationErrors(err); ok {
		resp.Fields = verrs
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Unhandled error", requestIDField(r), zap.Error(err))
		resp.Error = "internal error"
	}
	s.respond(w, r, status, resp)
}

// respond writes v and logs when it could not be encoded.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if err := writeJSON(w, status, v); err != nil {
		s.logger.Error("Failed to encode response", requestIDField(r), zap.Error(err))
	}
}
