// Copyright 2025 Certen Protocol

package ckbrpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Block is a CKB block as returned by get_block_by_number: a header and
// an ordered list of transactions.
type Block struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// Header carries the block's declared timestamp, in milliseconds.
type Header struct {
	Number      HexUint64 `json:"number"`
	TimestampMs HexUint64 `json:"timestamp"`
}

// Transaction is one CKB transaction: consumed inputs, produced outputs
// and the raw data bytes attached to each output.
type Transaction struct {
	Hash        string     `json:"hash"`
	Inputs      []Input    `json:"inputs"`
	Outputs     []Output   `json:"outputs"`
	OutputsData []HexBytes `json:"outputs_data"`
}

// Input names the previous output a transaction consumes.
type Input struct {
	PreviousOutput OutPoint `json:"previous_output"`
}

// OutPoint identifies an output by the transaction that created it and
// its index within that transaction's output list.
type OutPoint struct {
	TxHash string    `json:"tx_hash"`
	Index  HexUint32 `json:"index"`
}

// Output carries the lock script every cell has and the optional type
// script that gives a cell semantic meaning.
type Output struct {
	Type *Script `json:"type"`
	Lock Script  `json:"lock"`
}

// Script is a (code_hash, hash_type, args) triple.
type Script struct {
	CodeHash string   `json:"code_hash"`
	HashType string   `json:"hash_type"`
	Args     HexBytes `json:"args"`
}

// CodeHashBytes decodes the script's code_hash into raw bytes.
func (s Script) CodeHashBytes() ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s.CodeHash, "0x"))
	if err != nil {
		return out, fmt.Errorf("decode code_hash: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("code_hash has %d bytes, want 32", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// HexUint64 unmarshals a CKB-style "0x..." quantity into a uint64.
type HexUint64 uint64

func (h *HexUint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseHexUint(s)
	if err != nil {
		return err
	}
	*h = HexUint64(v)
	return nil
}

// HexUint32 unmarshals a CKB-style "0x..." quantity into a uint32.
type HexUint32 uint32

func (h *HexUint32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseHexUint(s)
	if err != nil {
		return err
	}
	*h = HexUint32(v)
	return nil
}

// HexBytes unmarshals a "0x..." hex string into raw bytes.
type HexBytes []byte

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("decode hex bytes: %w", err)
	}
	*h = raw
	return nil
}
