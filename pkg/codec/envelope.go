// Copyright 2025 Certen Protocol
//
// Decoding of the on-chain DidWeb5Data envelope: a Molecule tagged-union
// wrapping a single DAG-CBOR document. The envelope is schema-evolved —
// only variant V1 is currently understood, and any other item id must
// fail closed rather than be silently coerced.

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when the envelope's union tag does not
// match any variant this decoder understands.
var ErrUnknownVariant = errors.New("unrecognized DidWeb5Data variant, please update cell")

// ErrMalformed is returned when the envelope bytes do not form a valid
// Molecule union/table layout.
var ErrMalformed = errors.New("malformed DidWeb5Data envelope")

// didWeb5DataV1ItemID is the Molecule union item id for the V1 variant,
// the only one this decoder currently recognizes.
const didWeb5DataV1ItemID = 0

const moleculeHeaderSize = 4

// DecodeEnvelope parses the tagged-union DidWeb5Data envelope and returns
// the raw bytes of the inner `document` field of the V1 variant.
func DecodeEnvelope(raw []byte) ([]byte, error) {
	if len(raw) < moleculeHeaderSize {
		return nil, fmt.Errorf("%w: envelope too short (%d bytes)", ErrMalformed, len(raw))
	}
	itemID := binary.LittleEndian.Uint32(raw[:moleculeHeaderSize])
	if itemID != didWeb5DataV1ItemID {
		return nil, fmt.Errorf("%w: item id %d", ErrUnknownVariant, itemID)
	}
	return decodeV1Table(raw[moleculeHeaderSize:])
}

// decodeV1Table decodes the DidWeb5DataV1 table, which has exactly one
// field: `document: Bytes`. Molecule encodes a table as a total-size word,
// one offset word per field, and the field payloads themselves.
func decodeV1Table(data []byte) ([]byte, error) {
	if len(data) < moleculeHeaderSize*2 {
		return nil, fmt.Errorf("%w: V1 table too short (%d bytes)", ErrMalformed, len(data))
	}
	totalSize := binary.LittleEndian.Uint32(data[0:4])
	fieldOffset := binary.LittleEndian.Uint32(data[4:8])
	if int(totalSize) != len(data) {
		return nil, fmt.Errorf("%w: V1 table declares size %d, got %d bytes", ErrMalformed, totalSize, len(data))
	}
	if int(fieldOffset) > len(data) || fieldOffset < moleculeHeaderSize*2 {
		return nil, fmt.Errorf("%w: V1 table field offset %d out of range", ErrMalformed, fieldOffset)
	}
	return decodeBytesField(data[fieldOffset:])
}

// decodeBytesField decodes a Molecule dynamic `Bytes` value: a 4-byte
// little-endian length prefix followed by that many raw bytes.
func decodeBytesField(data []byte) ([]byte, error) {
	if len(data) < moleculeHeaderSize {
		return nil, fmt.Errorf("%w: Bytes field too short", ErrMalformed)
	}
	length := binary.LittleEndian.Uint32(data[:moleculeHeaderSize])
	data = data[moleculeHeaderSize:]
	if uint64(length) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: Bytes field declares length %d, only %d available", ErrMalformed, length, len(data))
	}
	return data[:length], nil
}
