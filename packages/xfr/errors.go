package xfr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrParseBytesFailed is returned if information can not be parsed from a sequence of bytes.
	ErrParseBytesFailed = errors.New("failed to parse bytes")

	// ErrInvalidRecord is returned if a record is structurally invalid (i.e. a confidential field without commitment).
	ErrInvalidRecord = errors.New("invalid record")
)
