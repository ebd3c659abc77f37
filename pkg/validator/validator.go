// Copyright 2025 Certen Protocol
//
// Structural and semantic validation of a decoded DidDocument, and
// extraction of the fields the projection store indexes by.

package validator

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"github.com/certen/did-indexer/pkg/codec"
)

// ErrIncompatibleDoc is returned when a decoded document fails one of the
// structural rules below. The wrapped message names which rule failed.
var ErrIncompatibleDoc = errors.New("did document incompatible")

const (
	akaPrefix        = "at://"
	signingKeyPrefix = "did:key"
	atprotoKey       = "atproto"
)

// Result holds what the follower needs after a document passes validation.
type Result struct {
	Handle     string
	SigningKey string
}

// Validate enforces document structure rules in order and extracts
// (handle, signing key) on success.
func Validate(doc *codec.DidDocument) (Result, error) {
	if len(doc.AlsoKnownAs) == 0 || !strings.HasPrefix(doc.AlsoKnownAs[0], akaPrefix) {
		return Result{}, fmt.Errorf("%w: alsoKnownAs not correct: %v", ErrIncompatibleDoc, doc.AlsoKnownAs)
	}
	if len(doc.Services) == 0 {
		return Result{}, fmt.Errorf("%w: services not provide", ErrIncompatibleDoc)
	}
	key, ok := doc.VerificationMethods[atprotoKey]
	if !ok {
		return Result{}, fmt.Errorf("%w: verificationMethods not provide", ErrIncompatibleDoc)
	}
	if !strings.HasPrefix(key, signingKeyPrefix) {
		return Result{}, fmt.Errorf("%w: verificationMethods provided signing key format error: %s", ErrIncompatibleDoc, key)
	}

	handle := doc.AlsoKnownAs[0][len(akaPrefix):]
	return Result{Handle: handle, SigningKey: key}, nil
}

// CalculateDID derives the canonical identifier from the first 20 bytes of
// a type-script's args: lowercase base32 of those bytes, with no scheme
// prefix. Do not add one without checking downstream consumers first.
func CalculateDID(typeScriptArgs []byte) (string, error) {
	if len(typeScriptArgs) < 20 {
		return "", fmt.Errorf("type script args too short for DID derivation: %d bytes", len(typeScriptArgs))
	}
	return strings.ToLower(base32.StdEncoding.EncodeToString(typeScriptArgs[:20])), nil
}
