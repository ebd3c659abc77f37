// Copyright 2025 Certen Protocol
//
// A minimal Bech32m encoder (BIP-350 checksum constant), since no example
// in the retrieval pack pins a version of a bech32 library new enough to
// guarantee a bech32m (as opposed to plain bech32) encoder is present —
// this is the same "no library in the pack speaks this wire format"
// situation as the Molecule envelope decoder, so it stays on a small
// hand-written implementation of the published algorithm rather than a
// third-party dependency whose API shape can't be verified here.

package ckbaddr

const bech32mConst = 0x2bc830a3

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := byte(chk >> 25)
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ bech32mConst
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

// encodeM renders hrp and a slice of 5-bit groups as a Bech32m string.
func encodeM(hrp string, data []byte) string {
	combined := append(append([]byte{}, data...), createChecksum(hrp, data)...)
	out := make([]byte, 0, len(hrp)+1+len(combined))
	out = append(out, hrp...)
	out = append(out, '1')
	for _, b := range combined {
		out = append(out, charset[b])
	}
	return string(out)
}

// convertBits re-groups a byte slice from fromBits-sized groups to
// toBits-sized groups, the standard SegWit/Bech32 bit-regrouping
// algorithm used to turn 8-bit payload bytes into 5-bit symbols.
func convertBits(data []byte, fromBits, toBits uint, pad bool) []byte {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, b := range data {
		acc = (acc << fromBits) | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad && bits > 0 {
		out = append(out, byte((acc<<(toBits-bits))&maxv))
	}
	return out
}
