// Copyright 2025 Certen Protocol

package codec

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestDecodeDocument(t *testing.T) {
	doc := DidDocument{
		AlsoKnownAs:         []string{"at://alice.example"},
		Services:            []map[string]any{{"id": "#atproto_pds", "type": "AtprotoPersonalDataServer"}},
		VerificationMethods: map[string]string{"atproto": "did:key:z6MkabcExampleKey"},
	}
	raw, err := cbor.Marshal(doc)
	if err != nil {
		t.Fatalf("cbor.Marshal: %v", err)
	}

	got, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if len(got.AlsoKnownAs) != 1 || got.AlsoKnownAs[0] != doc.AlsoKnownAs[0] {
		t.Errorf("AlsoKnownAs = %v, want %v", got.AlsoKnownAs, doc.AlsoKnownAs)
	}
	if got.VerificationMethods["atproto"] != doc.VerificationMethods["atproto"] {
		t.Errorf("VerificationMethods[atproto] = %v, want %v", got.VerificationMethods["atproto"], doc.VerificationMethods["atproto"])
	}
}

func TestDecodeDocumentMalformed(t *testing.T) {
	_, err := DecodeDocument([]byte{0xff, 0xff, 0xff})
	if !errors.Is(err, ErrDagCbor) {
		t.Fatalf("got %v, want ErrDagCbor", err)
	}
}

func TestDecodeFullPipeline(t *testing.T) {
	doc := DidDocument{AlsoKnownAs: []string{"at://bob.example"}}
	raw, _ := cbor.Marshal(doc)

	cellData := encodeV1(raw)
	got, err := Decode(cellData)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.AlsoKnownAs[0] != "at://bob.example" {
		t.Errorf("AlsoKnownAs[0] = %q", got.AlsoKnownAs[0])
	}
}
