// Copyright 2025 Certen Protocol

package codec

import "errors"

// ErrDagCbor is returned when the inner document bytes fail to parse as
// DAG-CBOR.
var ErrDagCbor = errors.New("dag-cbor decode failed")
