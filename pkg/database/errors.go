// Copyright 2025 Certen Protocol
//
// Package database provides sentinel errors for projection-store
// operations. Callers use errors.Is to classify them (e.g. at the HTTP
// boundary, where DidDocNotFound maps to 404).

package database

import "errors"

var (
	// ErrDidDocNotFound is returned when no live record exists for the
	// requested did or (txHash, outIndex) reference.
	ErrDidDocNotFound = errors.New("did document not found")

	// ErrDidDocNoData is returned when a live row's stored document JSON
	// fails to parse.
	ErrDidDocNoData = errors.New("did document has no parseable data")

	// ErrHandleNotFound is returned when no live record is registered
	// under the requested handle.
	ErrHandleNotFound = errors.New("handle not found")

	// ErrCountNotFound is returned when the live table is empty, so no
	// maximum height exists yet.
	ErrCountNotFound = errors.New("no height recorded")
)
