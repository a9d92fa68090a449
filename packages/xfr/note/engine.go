// Package note contains the confidential note engine that turns record templates into blind records and assembles the
// note of a transfer.
package note

import (
	"io"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// region Engine ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Engine is the interface of the confidential note engine. All randomness is drawn from the CSPRNG that is passed in
// by the caller.
type Engine interface {
	// RecordFromTemplate materializes a new output record.
	RecordFromTemplate(rng io.Reader, template *xfr.Template) (*AssetRecord, error)

	// RecordFromTemplateWithIdentity materializes a new output record that carries an identity commitment which is
	// revealed to identity tracing auditors.
	RecordFromTemplateWithIdentity(rng io.Reader, template *xfr.Template, credential *xfr.IdentityCredential) (*AssetRecord, error)

	// RecordFromOpenRecord wraps an already existing record so that it can be spent as an input.
	RecordFromOpenRecord(rng io.Reader, record *xfr.OpenRecord, policies xfr.TracingPolicies) (*AssetRecord, error)

	// BuildNote assembles the note that moves the value of the inputs into the outputs.
	BuildNote(rng io.Reader, inputs []*AssetRecord, outputs []*AssetRecord) (*Note, error)

	// OpenRecord reveals the confidential fields of a record that is owned by the given key pair.
	OpenRecord(record xfr.BlindRecord, memo *xfr.OwnerMemo, keyPair ed25519.KeyPair) (*xfr.OpenRecord, error)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AssetRecord //////////////////////////////////////////////////////////////////////////////////////////////////

// AssetRecord is an opened record together with the memos that accompany it into a note.
type AssetRecord struct {
	OpenRecord         *xfr.OpenRecord
	OwnerMemo          *xfr.OwnerMemo
	TracerMemos        []*TracerMemo
	IdentityCommitment *xfr.IdentityCommitment
}

// Amount returns the plain amount of the record.
func (a *AssetRecord) Amount() uint64 {
	return a.OpenRecord.Amount
}

// AssetType returns the plain asset type of the record.
func (a *AssetRecord) AssetType() xfr.AssetType {
	return a.OpenRecord.AssetType
}

// RecordType returns the confidentiality class of the record.
func (a *AssetRecord) RecordType() xfr.RecordType {
	return a.OpenRecord.RecordType()
}

// PublicKey returns the owner of the record.
func (a *AssetRecord) PublicKey() ed25519.PublicKey {
	return a.OpenRecord.PublicKey
}

// String returns a human readable version of the AssetRecord.
func (a *AssetRecord) String() string {
	return stringify.Struct("AssetRecord",
		stringify.StructField("record", a.OpenRecord),
		stringify.StructField("ownerMemo", a.OwnerMemo != nil),
		stringify.StructField("tracerMemos", len(a.TracerMemos)),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Note /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Note is the confidential core of a transfer. It contains the blind inputs and outputs, the memos that allow owners and
// auditors to open the outputs and the proof that value is conserved.
type Note struct {
	Inputs            []xfr.BlindRecord
	Outputs           []xfr.BlindRecord
	OwnerMemos        []*xfr.OwnerMemo
	InputTracerMemos  [][]*TracerMemo
	OutputTracerMemos [][]*TracerMemo
	ExcessProof       ExcessProof
}

// Clone returns a deep copy of the Note.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}

	ownerMemos := make([]*xfr.OwnerMemo, len(n.OwnerMemos))
	for i, ownerMemo := range n.OwnerMemos {
		ownerMemos[i] = ownerMemo.Clone()
	}

	return &Note{
		Inputs:            append([]xfr.BlindRecord(nil), n.Inputs...),
		Outputs:           append([]xfr.BlindRecord(nil), n.Outputs...),
		OwnerMemos:        ownerMemos,
		InputTracerMemos:  cloneTracerMemos(n.InputTracerMemos),
		OutputTracerMemos: cloneTracerMemos(n.OutputTracerMemos),
		ExcessProof:       n.ExcessProof,
	}
}

// Bytes returns a marshaled version of the Note.
func (n *Note) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.Write(blindRecords(n.Inputs))
	marshalUtil.Write(blindRecords(n.Outputs))

	marshalUtil.WriteUint32(uint32(len(n.OwnerMemos)))
	for _, ownerMemo := range n.OwnerMemos {
		marshalUtil.WriteBool(ownerMemo != nil)
		if ownerMemo != nil {
			marshalUtil.WriteBytes(ownerMemo.Bytes())
		}
	}
	writeTracerMemos(marshalUtil, n.InputTracerMemos)
	writeTracerMemos(marshalUtil, n.OutputTracerMemos)

	return marshalUtil.WriteBytes(n.ExcessProof.Bytes()).Bytes()
}

// String returns a human readable version of the Note.
func (n *Note) String() string {
	return stringify.Struct("Note",
		stringify.StructField("inputs", len(n.Inputs)),
		stringify.StructField("outputs", len(n.Outputs)),
	)
}

// blindRecords is the serialized, length prefixed list of records that the excess proof commits to.
type blindRecords []xfr.BlindRecord

// Bytes returns a marshaled version of the records.
func (b blindRecords) Bytes() []byte {
	marshalUtil := marshalutil.New().WriteUint32(uint32(len(b)))
	for _, record := range b {
		marshalUtil.WriteBytes(record.Bytes())
	}

	return marshalUtil.Bytes()
}

func cloneTracerMemos(tracerMemos [][]*TracerMemo) (clonedTracerMemos [][]*TracerMemo) {
	if tracerMemos == nil {
		return nil
	}

	clonedTracerMemos = make([][]*TracerMemo, len(tracerMemos))
	for i, memos := range tracerMemos {
		if memos == nil {
			continue
		}
		clonedTracerMemos[i] = make([]*TracerMemo, len(memos))
		for j, memo := range memos {
			clonedTracerMemos[i][j] = memo.Clone()
		}
	}

	return clonedTracerMemos
}

func writeTracerMemos(marshalUtil *marshalutil.MarshalUtil, tracerMemos [][]*TracerMemo) {
	marshalUtil.WriteUint32(uint32(len(tracerMemos)))
	for _, memos := range tracerMemos {
		marshalUtil.WriteUint32(uint32(len(memos)))
		for _, memo := range memos {
			marshalUtil.WriteBytes(memo.Bytes())
		}
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
