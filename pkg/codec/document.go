// Copyright 2025 Certen Protocol

package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// DidDocument is the decoded payload of a DID cell: the document a DID
// subject publishes on-chain, after the envelope and DAG-CBOR layers have
// both been stripped away.
type DidDocument struct {
	AlsoKnownAs         []string          `cbor:"alsoKnownAs" json:"alsoKnownAs"`
	Services            []map[string]any  `cbor:"services" json:"services"`
	VerificationMethods map[string]string `cbor:"verificationMethods" json:"verificationMethods"`
}

var dagCBORDecMode = func() cbor.DecMode {
	// DAG-CBOR forbids indefinite-length items and duplicate map keys;
	// this decoder rejects both. The other DAG-CBOR canonical-form rules
	// (key ordering, minimal integer encoding) are not checked.
	mode, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid cbor decode options: %v", err))
	}
	return mode
}()

// DecodeDocument decodes DAG-CBOR bytes (the envelope's inner `document`
// field) into a DidDocument.
func DecodeDocument(raw []byte) (*DidDocument, error) {
	doc := &DidDocument{}
	if err := dagCBORDecMode.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDagCbor, err)
	}
	return doc, nil
}

// Decode runs the full two-layer pipeline: envelope → inner bytes →
// DAG-CBOR document.
func Decode(cellData []byte) (*DidDocument, error) {
	inner, err := DecodeEnvelope(cellData)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(inner)
}
