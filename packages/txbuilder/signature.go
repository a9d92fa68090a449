package txbuilder

import (
	"strconv"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// WholeBody is the input index of a signature that authorizes the whole transfer body.
const WholeBody = -1

// IndexedSignature is a signature over a TransferBody. A signature with InputIndex WholeBody authorizes every input that
// is owned by Address, a signature with a non-negative InputIndex only authorizes that input (co-signature).
type IndexedSignature struct {
	Address    ed25519.PublicKey
	Signature  ed25519.Signature
	InputIndex int
}

// ComputeSignature signs the body (and the input index) with the given key pair.
func ComputeSignature(body *TransferBody, keyPair ed25519.KeyPair, inputIndex int) *IndexedSignature {
	return &IndexedSignature{
		Address:    keyPair.PublicKey,
		Signature:  keyPair.PrivateKey.Sign(signedMessage(body, inputIndex)),
		InputIndex: inputIndex,
	}
}

// Verify checks the signature against the exact bytes of the given body.
func (i *IndexedSignature) Verify(body *TransferBody) bool {
	if i.InputIndex < WholeBody {
		return false
	}

	return i.Address.VerifySignature(signedMessage(body, i.InputIndex), i.Signature)
}

// Covers returns true if the signature authorizes the input with the given index on behalf of owner.
func (i *IndexedSignature) Covers(inputIndex int, owner ed25519.PublicKey) bool {
	return i.Address == owner && (i.InputIndex == WholeBody || i.InputIndex == inputIndex)
}

// Bytes returns a marshaled version of the IndexedSignature.
func (i *IndexedSignature) Bytes() []byte {
	return marshalutil.New(ed25519.PublicKeySize + ed25519.SignatureSize + marshalutil.BoolSize + marshalutil.Uint64Size).
		WriteBytes(i.Address.Bytes()).
		WriteBytes(i.Signature.Bytes()).
		Write(inputIndex(i.InputIndex)).
		Bytes()
}

// String returns a human readable version of the IndexedSignature.
func (i *IndexedSignature) String() string {
	return stringify.Struct("IndexedSignature",
		stringify.StructField("address", i.Address.String()),
		stringify.StructField("inputIndex", inputIndex(i.InputIndex).String()),
	)
}

// signedMessage is the body followed by the encoding of the input index.
func signedMessage(body *TransferBody, index int) []byte {
	return marshalutil.New().
		WriteBytes(body.Bytes()).
		Write(inputIndex(index)).
		Bytes()
}

// inputIndex encodes an optional input index.
type inputIndex int

// Bytes returns a marshaled version of the inputIndex.
func (i inputIndex) Bytes() []byte {
	marshalUtil := marshalutil.New(marshalutil.BoolSize + marshalutil.Uint64Size).WriteBool(i != WholeBody)
	if i != WholeBody {
		marshalUtil.WriteUint64(uint64(i))
	}

	return marshalUtil.Bytes()
}

// String returns a human readable version of the inputIndex.
func (i inputIndex) String() string {
	if i == WholeBody {
		return "WholeBody"
	}

	return strconv.Itoa(int(i))
}
