// Copyright 2025 Certen Protocol

package codec

import (
	"encoding/binary"
	"errors"
	"testing"
)

// encodeV1 builds a well-formed DidWeb5Data V1 envelope wrapping document.
func encodeV1(document []byte) []byte {
	bytesField := make([]byte, 4+len(document))
	binary.LittleEndian.PutUint32(bytesField, uint32(len(document)))
	copy(bytesField[4:], document)

	const fieldOffset = 8
	table := make([]byte, fieldOffset+len(bytesField))
	binary.LittleEndian.PutUint32(table[0:4], uint32(len(table)))
	binary.LittleEndian.PutUint32(table[4:8], fieldOffset)
	copy(table[fieldOffset:], bytesField)

	envelope := make([]byte, 4+len(table))
	binary.LittleEndian.PutUint32(envelope[0:4], didWeb5DataV1ItemID)
	copy(envelope[4:], table)
	return envelope
}

func TestDecodeEnvelopeRoundTrip(t *testing.T) {
	want := []byte("hello-dag-cbor")
	got, err := DecodeEnvelope(encodeV1(want))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeEnvelopeUnknownVariant(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[0:4], 7)
	_, err := DecodeEnvelope(raw)
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("got %v, want ErrUnknownVariant", err)
	}
}

func TestDecodeEnvelopeTooShort(t *testing.T) {
	_, err := DecodeEnvelope([]byte{0, 0})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestDecodeEnvelopeTruncatedBytesField(t *testing.T) {
	raw := encodeV1([]byte("abc"))
	truncated := raw[:len(raw)-1]
	_, err := DecodeEnvelope(truncated)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}
