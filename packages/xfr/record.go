package xfr

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// region Commitment ///////////////////////////////////////////////////////////////////////////////////////////////////

// CommitmentLength represents the length of a Commitment (amount of bytes).
const CommitmentLength = 32

// Commitment is the compressed encoding of a commitment that hides a field of a record.
type Commitment [CommitmentLength]byte

// Bytes marshals the Commitment into a sequence of bytes.
func (c Commitment) Bytes() []byte {
	return c[:]
}

// String returns the base64 form of the Commitment.
func (c Commitment) String() string {
	return base64.StdEncoding.EncodeToString(c[:])
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region XfrAmount ////////////////////////////////////////////////////////////////////////////////////////////////////

// XfrAmount is the amount field of a BlindRecord. It either holds the plain value or a Commitment to it.
type XfrAmount struct {
	Confidential bool
	Value        uint64
	Commitment   Commitment
}

// NewXfrAmount returns a non-confidential amount.
func NewXfrAmount(value uint64) XfrAmount {
	return XfrAmount{Value: value}
}

// NewConfidentialXfrAmount returns an amount that is hidden behind the given Commitment.
func NewConfidentialXfrAmount(commitment Commitment) XfrAmount {
	return XfrAmount{Confidential: true, Commitment: commitment}
}

// Bytes returns a marshaled version of the XfrAmount.
func (x XfrAmount) Bytes() []byte {
	marshalUtil := marshalutil.New(marshalutil.BoolSize + CommitmentLength).WriteBool(x.Confidential)
	if x.Confidential {
		return marshalUtil.WriteBytes(x.Commitment.Bytes()).Bytes()
	}

	return marshalUtil.WriteUint64(x.Value).Bytes()
}

// MarshalJSON encodes the amount in the externally tagged form that is used by the ledger.
func (x XfrAmount) MarshalJSON() ([]byte, error) {
	if x.Confidential {
		return json.Marshal(map[string]string{"Confidential": x.Commitment.String()})
	}

	return json.Marshal(map[string]string{"NonConfidential": strconv.FormatUint(x.Value, 10)})
}

// UnmarshalJSON decodes the externally tagged form that is used by the ledger.
func (x *XfrAmount) UnmarshalJSON(data []byte) (err error) {
	tagged := make(map[string]string)
	if err = json.Unmarshal(data, &tagged); err != nil {
		return errors.Wrapf(ErrParseBytesFailed, "failed to decode XfrAmount: %s", err.Error())
	}

	if encoded, exists := tagged["Confidential"]; exists {
		x.Confidential = true
		return decodeCommitment(encoded, &x.Commitment)
	}
	if encoded, exists := tagged["NonConfidential"]; exists {
		x.Confidential = false
		if x.Value, err = strconv.ParseUint(encoded, 10, 64); err != nil {
			return errors.Wrapf(ErrParseBytesFailed, "failed to decode amount %s: %s", encoded, err.Error())
		}
		return nil
	}

	return errors.Wrapf(ErrParseBytesFailed, "unknown XfrAmount variant in %s", string(data))
}

// String returns a human readable version of the XfrAmount.
func (x XfrAmount) String() string {
	if x.Confidential {
		return "Confidential(" + x.Commitment.String() + ")"
	}

	return strconv.FormatUint(x.Value, 10)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region XfrAssetType /////////////////////////////////////////////////////////////////////////////////////////////////

// XfrAssetType is the asset type field of a BlindRecord. It either holds the plain AssetType or a Commitment to it.
type XfrAssetType struct {
	Confidential bool
	AssetType    AssetType
	Commitment   Commitment
}

// NewXfrAssetType returns a non-confidential asset type.
func NewXfrAssetType(assetType AssetType) XfrAssetType {
	return XfrAssetType{AssetType: assetType}
}

// NewConfidentialXfrAssetType returns an asset type that is hidden behind the given Commitment.
func NewConfidentialXfrAssetType(commitment Commitment) XfrAssetType {
	return XfrAssetType{Confidential: true, Commitment: commitment}
}

// Bytes returns a marshaled version of the XfrAssetType.
func (x XfrAssetType) Bytes() []byte {
	marshalUtil := marshalutil.New(marshalutil.BoolSize + AssetTypeLength).WriteBool(x.Confidential)
	if x.Confidential {
		return marshalUtil.WriteBytes(x.Commitment.Bytes()).Bytes()
	}

	return marshalUtil.WriteBytes(x.AssetType.Bytes()).Bytes()
}

// MarshalJSON encodes the asset type in the externally tagged form that is used by the ledger.
func (x XfrAssetType) MarshalJSON() ([]byte, error) {
	if x.Confidential {
		return json.Marshal(map[string]string{"Confidential": x.Commitment.String()})
	}

	return json.Marshal(map[string]string{"NonConfidential": x.AssetType.Hex()})
}

// UnmarshalJSON decodes the externally tagged form that is used by the ledger.
func (x *XfrAssetType) UnmarshalJSON(data []byte) (err error) {
	tagged := make(map[string]string)
	if err = json.Unmarshal(data, &tagged); err != nil {
		return errors.Wrapf(ErrParseBytesFailed, "failed to decode XfrAssetType: %s", err.Error())
	}

	if encoded, exists := tagged["Confidential"]; exists {
		x.Confidential = true
		return decodeCommitment(encoded, &x.Commitment)
	}
	if encoded, exists := tagged["NonConfidential"]; exists {
		x.Confidential = false
		x.AssetType, err = AssetTypeFromString(encoded)
		return err
	}

	return errors.Wrapf(ErrParseBytesFailed, "unknown XfrAssetType variant in %s", string(data))
}

// String returns a human readable version of the XfrAssetType.
func (x XfrAssetType) String() string {
	if x.Confidential {
		return "Confidential(" + x.Commitment.String() + ")"
	}

	return x.AssetType.String()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region BlindRecord //////////////////////////////////////////////////////////////////////////////////////////////////

// BlindRecord is a record as it is stored in the ledger. Its confidential fields can only be read by opening it with the
// owner's key and the accompanying OwnerMemo.
type BlindRecord struct {
	Amount    XfrAmount         `json:"amount"`
	AssetType XfrAssetType      `json:"asset_type"`
	PublicKey ed25519.PublicKey `json:"-"`
}

// RecordType returns the confidentiality class of the record.
func (b BlindRecord) RecordType() RecordType {
	return RecordTypeFromFlags(b.Amount.Confidential, b.AssetType.Confidential)
}

// Bytes returns a marshaled version of the BlindRecord.
func (b BlindRecord) Bytes() []byte {
	return marshalutil.New().
		WriteBytes(b.Amount.Bytes()).
		WriteBytes(b.AssetType.Bytes()).
		WriteBytes(b.PublicKey.Bytes()).
		Bytes()
}

// MarshalJSON encodes the record in the form that is used by the ledger (the key is url safe base64 encoded).
func (b BlindRecord) MarshalJSON() ([]byte, error) {
	type alias BlindRecord
	return json.Marshal(struct {
		alias
		PublicKey string `json:"public_key"`
	}{alias(b), PublicKeyToBase64URL(b.PublicKey)})
}

// UnmarshalJSON decodes the form that is used by the ledger.
func (b *BlindRecord) UnmarshalJSON(data []byte) (err error) {
	type alias BlindRecord
	decoded := struct {
		*alias
		PublicKey string `json:"public_key"`
	}{alias: (*alias)(b)}
	if err = json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrapf(ErrParseBytesFailed, "failed to decode BlindRecord: %s", err.Error())
	}
	b.PublicKey, err = PublicKeyFromString(decoded.PublicKey)

	return err
}

// String returns a human readable version of the BlindRecord.
func (b BlindRecord) String() string {
	return stringify.Struct("BlindRecord",
		stringify.StructField("amount", b.Amount.String()),
		stringify.StructField("assetType", b.AssetType.String()),
		stringify.StructField("publicKey", b.PublicKey.String()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OwnerMemo ////////////////////////////////////////////////////////////////////////////////////////////////////

// OwnerMemo carries the sealed opening of the confidential fields of a record. Only the owner of the record can unseal
// it.
type OwnerMemo struct {
	EphemeralKey []byte `json:"ephemeral_key"`
	Ciphertext   []byte `json:"ciphertext"`
}

// Clone returns a deep copy of the OwnerMemo.
func (o *OwnerMemo) Clone() *OwnerMemo {
	if o == nil {
		return nil
	}

	return &OwnerMemo{
		EphemeralKey: append([]byte(nil), o.EphemeralKey...),
		Ciphertext:   append([]byte(nil), o.Ciphertext...),
	}
}

// Bytes returns a marshaled version of the OwnerMemo.
func (o *OwnerMemo) Bytes() []byte {
	return marshalutil.New().
		WriteUint32(uint32(len(o.EphemeralKey))).
		WriteBytes(o.EphemeralKey).
		WriteUint32(uint32(len(o.Ciphertext))).
		WriteBytes(o.Ciphertext).
		Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OpenRecord ///////////////////////////////////////////////////////////////////////////////////////////////////

// OpenRecord is a BlindRecord together with the plain values (and blinding factors) of its fields.
type OpenRecord struct {
	BlindRecord    BlindRecord
	Amount         uint64
	AssetType      AssetType
	PublicKey      ed25519.PublicKey
	AmountBlinding [32]byte
	AssetBlinding  [32]byte
}

// RecordType returns the confidentiality class of the record.
func (o *OpenRecord) RecordType() RecordType {
	return o.BlindRecord.RecordType()
}

// String returns a human readable version of the OpenRecord.
func (o *OpenRecord) String() string {
	return stringify.Struct("OpenRecord",
		stringify.StructField("amount", o.Amount),
		stringify.StructField("assetType", o.AssetType.String()),
		stringify.StructField("recordType", o.RecordType().String()),
		stringify.StructField("publicKey", o.PublicKey.String()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Template /////////////////////////////////////////////////////////////////////////////////////////////////////

// Template describes an output record that is yet to be created.
type Template struct {
	Amount     uint64
	AssetType  AssetType
	RecordType RecordType
	PublicKey  ed25519.PublicKey
	Policies   TracingPolicies
}

// NewTemplate returns a Template that is not traced by any auditor.
func NewTemplate(amount uint64, assetType AssetType, recordType RecordType, publicKey ed25519.PublicKey) *Template {
	return &Template{
		Amount:     amount,
		AssetType:  assetType,
		RecordType: recordType,
		PublicKey:  publicKey,
	}
}

// WithTracing sets the tracing policies that are applied to the created record.
func (t *Template) WithTracing(policies TracingPolicies) *Template {
	t.Policies = policies

	return t
}

// String returns a human readable version of the Template.
func (t *Template) String() string {
	return stringify.Struct("Template",
		stringify.StructField("amount", t.Amount),
		stringify.StructField("assetType", t.AssetType.String()),
		stringify.StructField("recordType", t.RecordType.String()),
		stringify.StructField("publicKey", t.PublicKey.String()),
		stringify.StructField("policies", len(t.Policies)),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func decodeCommitment(encoded string, commitment *Commitment) error {
	commitmentBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errors.Wrapf(ErrParseBytesFailed, "failed to decode commitment %s: %s", encoded, err.Error())
	}
	if len(commitmentBytes) != CommitmentLength {
		return errors.Wrapf(ErrParseBytesFailed, "commitment must be %d bytes long, got %d", CommitmentLength, len(commitmentBytes))
	}
	copy(commitment[:], commitmentBytes)

	return nil
}
