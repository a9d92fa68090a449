package xfr

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
)

// region TxoSID ///////////////////////////////////////////////////////////////////////////////////////////////////////

// TxoSID is the ledger wide sequence number of a transaction output.
type TxoSID uint64

// String returns a human readable version of the TxoSID.
func (t TxoSID) String() string {
	return "TxoSID(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TxoRefType ///////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// UndefinedTxoRefType is the type of the zero TxoRef. It does not reference anything.
	UndefinedTxoRefType TxoRefType = iota

	// RelativeTxoRefType references an output of the transaction that is currently being built.
	RelativeTxoRefType

	// AbsoluteTxoRefType references an output that was already committed to the ledger.
	AbsoluteTxoRefType
)

// TxoRefType represents the kind of a TxoRef.
type TxoRefType uint8

// String returns a human readable representation of the TxoRefType.
func (t TxoRefType) String() string {
	return [...]string{
		"UndefinedTxoRefType",
		"RelativeTxoRefType",
		"AbsoluteTxoRefType",
	}[t]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TxoRef ///////////////////////////////////////////////////////////////////////////////////////////////////////

// TxoRef identifies the record that is spent by an input. Absolute references point to committed ledger outputs while
// relative references point to the outputs of earlier operations within the same, not yet committed, transaction.
type TxoRef struct {
	refType TxoRefType
	value   uint64
}

// NewAbsoluteTxoRef returns a reference to the committed output with the given sequence number.
func NewAbsoluteTxoRef(sid TxoSID) TxoRef {
	return TxoRef{refType: AbsoluteTxoRefType, value: uint64(sid)}
}

// NewRelativeTxoRef returns a reference to an output that is the given number of positions back in the transaction.
func NewRelativeTxoRef(offset uint64) TxoRef {
	return TxoRef{refType: RelativeTxoRefType, value: offset}
}

// TxoRefFromMarshalUtil unmarshals a TxoRef using a MarshalUtil (for easier unmarshaling).
func TxoRefFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (txoRef TxoRef, err error) {
	refType, err := marshalUtil.ReadByte()
	if err != nil {
		return txoRef, errors.Wrapf(ErrParseBytesFailed, "failed to parse TxoRefType: %s", err.Error())
	}
	if TxoRefType(refType) == UndefinedTxoRefType || TxoRefType(refType) > AbsoluteTxoRefType {
		return txoRef, errors.Wrapf(ErrParseBytesFailed, "unsupported TxoRefType (%X)", refType)
	}
	txoRef.refType = TxoRefType(refType)

	if txoRef.value, err = marshalUtil.ReadUint64(); err != nil {
		return txoRef, errors.Wrapf(ErrParseBytesFailed, "failed to parse TxoRef value: %s", err.Error())
	}

	return txoRef, nil
}

// Type returns the TxoRefType of the reference.
func (t TxoRef) Type() TxoRefType {
	return t.refType
}

// Valid returns true if the reference was created with NewAbsoluteTxoRef or NewRelativeTxoRef.
func (t TxoRef) Valid() bool {
	return t.refType == RelativeTxoRefType || t.refType == AbsoluteTxoRefType
}

// SID returns the referenced sequence number and a flag that indicates if the reference is absolute.
func (t TxoRef) SID() (TxoSID, bool) {
	return TxoSID(t.value), t.refType == AbsoluteTxoRefType
}

// Offset returns the relative offset and a flag that indicates if the reference is relative.
func (t TxoRef) Offset() (uint64, bool) {
	return t.value, t.refType == RelativeTxoRefType
}

// Bytes returns a marshaled version of the TxoRef.
func (t TxoRef) Bytes() []byte {
	return marshalutil.New(marshalutil.Uint64Size + 1).
		WriteByte(byte(t.refType)).
		WriteUint64(t.value).
		Bytes()
}

// String returns a human readable version of the TxoRef.
func (t TxoRef) String() string {
	switch t.refType {
	case AbsoluteTxoRefType:
		return "Absolute(" + strconv.FormatUint(t.value, 10) + ")"
	case RelativeTxoRefType:
		return "Relative(" + strconv.FormatUint(t.value, 10) + ")"
	default:
		return "Undefined"
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
