// Copyright 2025 Certen Protocol
//
// Derivation of CKB addresses from a lock script. Every output is treated
// as addressable via the Full-format short address (CKB address spec
// RFC 0021): a Bech32m-encoded payload of format type, code hash, hash
// type and args. No error path exists — a lock script is always
// addressable.

package ckbaddr

// Network selects which human-readable prefix an address is encoded with.
type Network string

const (
	Mainnet Network = "ckb"
	Testnet Network = "ckb_testnet"
)

func (n Network) hrp() string {
	if n == Mainnet {
		return "ckb"
	}
	return "ckt"
}

// HashType mirrors the three on-chain script hash-type tags.
type HashType byte

const (
	HashTypeData  HashType = 0x00
	HashTypeType  HashType = 0x01
	HashTypeData1 HashType = 0x02
)

// Script is the (code_hash, hash_type, args) triple that determines what a
// cell's lock means.
type Script struct {
	CodeHash [32]byte
	HashType HashType
	Args     []byte
}

const fullFormatType = 0x00

// Derive renders a Script as a Bech32m CKB address string for the given
// network tag.
func Derive(lock Script, network Network) string {
	payload := make([]byte, 0, 1+32+1+len(lock.Args))
	payload = append(payload, fullFormatType)
	payload = append(payload, lock.CodeHash[:]...)
	payload = append(payload, byte(lock.HashType))
	payload = append(payload, lock.Args...)

	converted := convertBits(payload, 8, 5, true)
	return encodeM(network.hrp(), converted)
}
