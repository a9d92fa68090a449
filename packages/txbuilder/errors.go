package txbuilder

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnbalancedTransfer is returned if the inputs and outputs of a transfer do not carry the same value per asset
	// type or if an input is planned to spend more than it holds.
	ErrUnbalancedTransfer = errors.New("unbalanced transfer")

	// ErrPolicyArityMismatch is returned if the tracing policies or identity commitments are not aligned with the inputs
	// and outputs of a transfer.
	ErrPolicyArityMismatch = errors.New("policies do not match the number of inputs and outputs")

	// ErrNoInputs is returned if a transfer without inputs is created.
	ErrNoInputs = errors.New("transfer has no inputs")

	// ErrAlreadyFinalized is returned if the structure of a transfer is modified after it was created.
	ErrAlreadyFinalized = errors.New("transfer has already been finalized")

	// ErrNotFinalized is returned if a transfer is signed or requested before it was created.
	ErrNotFinalized = errors.New("transaction has not yet been finalized")

	// ErrNoteEngine is returned if the confidential note engine fails to create a record or a note.
	ErrNoteEngine = errors.New("note engine error")

	// ErrSignatureVerificationFailed is returned if a signature does not verify against the body it claims to cover.
	ErrSignatureVerificationFailed = errors.New("signature verification failed")

	// ErrInvalidTxoRef is returned if an input is planned with the zero TxoRef.
	ErrInvalidTxoRef = errors.New("invalid txo reference")

	// ErrInvalidInputIndex is returned if a co-signature references an input that does not exist.
	ErrInvalidInputIndex = errors.New("invalid input index")
)
