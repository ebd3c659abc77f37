// Copyright 2025 Certen Protocol

package validator

import (
	"errors"
	"testing"

	"github.com/certen/did-indexer/pkg/codec"
)

func validDoc() *codec.DidDocument {
	return &codec.DidDocument{
		AlsoKnownAs:         []string{"at://alice.example"},
		Services:            []map[string]any{{"id": "#atproto_pds"}},
		VerificationMethods: map[string]string{"atproto": "did:key:z6MkabcExampleKey"},
	}
}

func TestValidateSuccess(t *testing.T) {
	res, err := Validate(validDoc())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Handle != "alice.example" {
		t.Errorf("Handle = %q, want alice.example", res.Handle)
	}
	if res.SigningKey != "did:key:z6MkabcExampleKey" {
		t.Errorf("SigningKey = %q", res.SigningKey)
	}
}

func TestValidateMissingAlsoKnownAs(t *testing.T) {
	doc := validDoc()
	doc.AlsoKnownAs = nil
	_, err := Validate(doc)
	if !errors.Is(err, ErrIncompatibleDoc) {
		t.Fatalf("got %v, want ErrIncompatibleDoc", err)
	}
}

func TestValidateBadAlsoKnownAsPrefix(t *testing.T) {
	doc := validDoc()
	doc.AlsoKnownAs = []string{"https://alice.example"}
	_, err := Validate(doc)
	if !errors.Is(err, ErrIncompatibleDoc) {
		t.Fatalf("got %v, want ErrIncompatibleDoc", err)
	}
}

func TestValidateNoServices(t *testing.T) {
	doc := validDoc()
	doc.Services = nil
	_, err := Validate(doc)
	if !errors.Is(err, ErrIncompatibleDoc) {
		t.Fatalf("got %v, want ErrIncompatibleDoc", err)
	}
}

func TestValidateMissingAtprotoKey(t *testing.T) {
	doc := validDoc()
	doc.VerificationMethods = map[string]string{}
	_, err := Validate(doc)
	if !errors.Is(err, ErrIncompatibleDoc) {
		t.Fatalf("got %v, want ErrIncompatibleDoc", err)
	}
}

func TestValidateBadSigningKeyFormat(t *testing.T) {
	doc := validDoc()
	doc.VerificationMethods["atproto"] = "not-a-key"
	_, err := Validate(doc)
	if !errors.Is(err, ErrIncompatibleDoc) {
		t.Fatalf("got %v, want ErrIncompatibleDoc", err)
	}
}

func TestCalculateDIDDeterministic(t *testing.T) {
	args := make([]byte, 32)
	for i := range args {
		args[i] = byte(i)
	}
	did1, err := CalculateDID(args)
	if err != nil {
		t.Fatalf("CalculateDID: %v", err)
	}
	args2 := append(append([]byte{}, args[:20]...), 0xFF, 0xFF, 0xFF, 0xFF)
	did2, err := CalculateDID(args2)
	if err != nil {
		t.Fatalf("CalculateDID: %v", err)
	}
	if did1 != did2 {
		t.Errorf("DID should depend only on first 20 bytes: %q != %q", did1, did2)
	}
}

func TestCalculateDIDTooShort(t *testing.T) {
	_, err := CalculateDID([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for short args")
	}
}
