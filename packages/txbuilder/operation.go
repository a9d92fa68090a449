package txbuilder

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// TransferOperation is a finalized TransferBody together with the signatures that authorize it. Signatures can only be
// appended.
type TransferOperation struct {
	body       *TransferBody
	signatures []*IndexedSignature
}

// NewTransferOperation creates an unsigned operation for the given body.
func NewTransferOperation(body *TransferBody) *TransferOperation {
	return &TransferOperation{body: body}
}

// Body returns the body of the operation.
func (t *TransferOperation) Body() *TransferBody {
	return t.body
}

// Signatures returns the signatures that were attached so far.
func (t *TransferOperation) Signatures() []*IndexedSignature {
	return append(make([]*IndexedSignature, 0, len(t.signatures)), t.signatures...)
}

// Sign attaches a signature of the key pair over the whole body.
func (t *TransferOperation) Sign(keyPair ed25519.KeyPair) error {
	return t.AttachSignature(ComputeSignature(t.body, keyPair, WholeBody))
}

// SignInput attaches a co-signature of the key pair that only authorizes the input with the given index.
func (t *TransferOperation) SignInput(keyPair ed25519.KeyPair, index int) error {
	if index < 0 || index >= len(t.body.inputs) {
		return errors.Wrapf(ErrInvalidInputIndex, "input %d does not exist in a body with %d inputs", index, len(t.body.inputs))
	}

	return t.AttachSignature(ComputeSignature(t.body, keyPair, index))
}

// AttachSignature verifies the signature against the body and appends it.
func (t *TransferOperation) AttachSignature(signature *IndexedSignature) error {
	if signature == nil {
		return errors.Wrap(ErrSignatureVerificationFailed, "signature must not be nil")
	}
	if signature.InputIndex >= len(t.body.inputs) {
		return errors.Wrapf(ErrInvalidInputIndex, "input %d does not exist in a body with %d inputs", signature.InputIndex, len(t.body.inputs))
	}
	if !signature.Verify(t.body) {
		return errors.Wrapf(ErrSignatureVerificationFailed, "signature of %s does not cover body %x", signature.Address, t.body.ID())
	}

	t.signatures = append(t.signatures, signature)

	return nil
}

// Covered returns true if every input has a signature of its owner. The owners must be aligned with the inputs of the
// body.
func (t *TransferOperation) Covered(inputOwners []ed25519.PublicKey) bool {
	if len(inputOwners) != len(t.body.inputs) {
		return false
	}

	for i, owner := range inputOwners {
		covered := false
		for _, signature := range t.signatures {
			if covered = signature.Covers(i, owner); covered {
				break
			}
		}
		if !covered {
			return false
		}
	}

	return true
}

// Bytes returns a marshaled version of the TransferOperation.
func (t *TransferOperation) Bytes() []byte {
	marshalUtil := marshalutil.New().
		WriteBytes(t.body.Bytes()).
		WriteUint32(uint32(len(t.signatures)))
	for _, signature := range t.signatures {
		marshalUtil.WriteBytes(signature.Bytes())
	}

	return marshalUtil.Bytes()
}

// String returns a human readable version of the TransferOperation.
func (t *TransferOperation) String() string {
	signatures := make([]string, len(t.signatures))
	for i, signature := range t.signatures {
		signatures[i] = signature.String()
	}

	return stringify.Struct("TransferOperation",
		stringify.StructField("body", t.body),
		stringify.StructField("signatures", signatures),
	)
}
