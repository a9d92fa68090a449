package txbuilder

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// region TxOutput /////////////////////////////////////////////////////////////////////////////////////////////////////

// TxOutput is an output of a transfer body. The ID is assigned by the ledger once the transfer is committed.
type TxOutput struct {
	ID     *xfr.TxoSID
	Record xfr.BlindRecord
}

// Bytes returns a marshaled version of the TxOutput.
func (t TxOutput) Bytes() []byte {
	marshalUtil := marshalutil.New().WriteBool(t.ID != nil)
	if t.ID != nil {
		marshalUtil.WriteUint64(uint64(*t.ID))
	}

	return marshalUtil.WriteBytes(t.Record.Bytes()).Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TransferBody /////////////////////////////////////////////////////////////////////////////////////////////////

// TransferBodyIDLength represents the length of a TransferBodyID (amount of bytes).
const TransferBodyIDLength = blake2b.Size256

// TransferBodyID is the hash of the canonical bytes of a TransferBody.
type TransferBodyID [TransferBodyIDLength]byte

// TransferBody is the immutable description of a transfer: the referenced inputs, the outputs, the note that moves the
// value and the declared transfer kind.
type TransferBody struct {
	inputs       []xfr.TxoRef
	outputs      []TxOutput
	policies     *NotePolicies
	note         *note.Note
	transferType TransferType
}

// NewTransferBody builds the note for the given records and wraps it into a TransferBody. The refs must be aligned with
// the input records and the policies with both inputs and outputs.
func NewTransferBody(rng io.Reader, engine note.Engine, inputRefs []xfr.TxoRef, inputRecords, outputRecords []*note.AssetRecord, policies *NotePolicies, transferType TransferType) (body *TransferBody, err error) {
	if len(inputRecords) == 0 {
		return nil, ErrNoInputs
	}
	if len(inputRefs) != len(inputRecords) {
		return nil, errors.Wrapf(ErrPolicyArityMismatch, "%d input references for %d input records", len(inputRefs), len(inputRecords))
	}
	for i, inputRef := range inputRefs {
		if !inputRef.Valid() {
			return nil, errors.Wrapf(ErrInvalidTxoRef, "input %d", i)
		}
	}
	if policies == nil {
		policies = EmptyNotePolicies(len(inputRecords), len(outputRecords))
	}
	if err = policies.checkArity(len(inputRecords), len(outputRecords)); err != nil {
		return nil, err
	}

	xfrNote, err := engine.BuildNote(rng, inputRecords, outputRecords)
	if err != nil {
		return nil, errors.Wrapf(ErrNoteEngine, "failed to build note: %s", err.Error())
	}

	body = &TransferBody{
		inputs:       append(make([]xfr.TxoRef, 0, len(inputRefs)), inputRefs...),
		outputs:      make([]TxOutput, len(xfrNote.Outputs)),
		policies:     policies.clone(),
		note:         xfrNote,
		transferType: transferType,
	}
	for i, output := range xfrNote.Outputs {
		body.outputs[i] = TxOutput{Record: output}
	}

	return body, nil
}

// Inputs returns the references of the spent records.
func (t *TransferBody) Inputs() []xfr.TxoRef {
	return append(make([]xfr.TxoRef, 0, len(t.inputs)), t.inputs...)
}

// Outputs returns the created records.
func (t *TransferBody) Outputs() []TxOutput {
	return append(make([]TxOutput, 0, len(t.outputs)), t.outputs...)
}

// Note returns a copy of the confidential note of the transfer.
func (t *TransferBody) Note() *note.Note {
	return t.note.Clone()
}

// Policies returns the tracing policies and identity commitments of the transfer.
func (t *TransferBody) Policies() *NotePolicies {
	return t.policies.clone()
}

// TransferType returns the declared kind of the transfer.
func (t *TransferBody) TransferType() TransferType {
	return t.transferType
}

// Clone returns a copy of the body that does not share any mutable state with the original.
func (t *TransferBody) Clone() *TransferBody {
	return &TransferBody{
		inputs:       t.Inputs(),
		outputs:      t.Outputs(),
		policies:     t.policies.clone(),
		note:         t.note.Clone(),
		transferType: t.transferType,
	}
}

// ID returns the hash of the canonical bytes of the body.
func (t *TransferBody) ID() TransferBodyID {
	return blake2b.Sum256(t.Bytes())
}

// Bytes returns the canonical encoding of the body that is covered by signatures.
func (t *TransferBody) Bytes() []byte {
	marshalUtil := marshalutil.New().
		WriteByte(byte(t.transferType)).
		WriteUint32(uint32(len(t.inputs)))
	for _, input := range t.inputs {
		marshalUtil.WriteBytes(input.Bytes())
	}

	marshalUtil.WriteUint32(uint32(len(t.outputs)))
	for _, output := range t.outputs {
		marshalUtil.WriteBytes(output.Bytes())
	}

	return marshalUtil.
		WriteBytes(t.policies.Bytes()).
		WriteBytes(t.note.Bytes()).
		Bytes()
}

// String returns a human readable version of the TransferBody.
func (t *TransferBody) String() string {
	inputs := make([]string, len(t.inputs))
	for i, input := range t.inputs {
		inputs[i] = input.String()
	}
	outputs := make([]string, len(t.outputs))
	for i, output := range t.outputs {
		outputs[i] = output.Record.String()
	}

	return stringify.Struct("TransferBody",
		stringify.StructField("transferType", t.transferType.String()),
		stringify.StructField("inputs", inputs),
		stringify.StructField("outputs", outputs),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
