package note

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidTemplate is returned if a record can not be created from the given template.
	ErrInvalidTemplate = errors.New("invalid record template")

	// ErrUnbalancedNote is returned if the inputs and outputs of a note do not carry the same value per asset type.
	ErrUnbalancedNote = errors.New("note inputs and outputs are not balanced")

	// ErrEmptyNote is returned if a note without inputs or outputs is requested.
	ErrEmptyNote = errors.New("note needs at least one input and one output")

	// ErrOpenRecordFailed is returned if a blind record can not be opened with the given key.
	ErrOpenRecordFailed = errors.New("failed to open record")

	// ErrMemo is returned if a memo can not be sealed or unsealed.
	ErrMemo = errors.New("memo error")

	// ErrInvalidProof is returned if the excess proof of a note does not verify.
	ErrInvalidProof = errors.New("invalid excess proof")
)
