// Copyright 2025 Certen Protocol

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certen/did-indexer/pkg/codec"
	"github.com/certen/did-indexer/pkg/database"
	"github.com/certen/did-indexer/pkg/validator"
)

// errorResponse is the JSON shape returned for every non-2xx response.
type errorResponse struct {
	Message string `json:"message"`
}

// statusFor classifies err into the HTTP status this service returns for
// it: not-found kinds map to 404, incompatible/invalid document kinds to
// 400, everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrDidDocNotFound),
		errors.Is(err, database.ErrHandleNotFound),
		errors.Is(err, errCkbAddrNotFound):
		return http.StatusNotFound
	case errors.Is(err, validator.ErrIncompatibleDoc),
		errors.Is(err, database.ErrDidDocNoData),
		errors.Is(err, errIncompatibleDid):
		return http.StatusBadRequest
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, codec.ErrUnknownVariant), errors.Is(err, codec.ErrMalformed), errors.Is(err, codec.ErrDagCbor):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the standard {"message": "..."} error body at the
// status statusFor(err) maps to.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(errorResponse{Message: err.Error()})
}

// writeMessage writes a {"message": "..."} body at status, bypassing
// statusFor for call sites that must reproduce a literal message
// distinct from the wrapped sentinel error's own text.
func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Message: message})
}

var (
	errCkbAddrNotFound  = errors.New("ckb address not registered")
	errIncompatibleDid  = errors.New("incompatible did string")
	errMethodNotAllowed = errors.New("method not allowed")
)
