package xfr

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// region TracingPolicy ////////////////////////////////////////////////////////////////////////////////////////////////

// TracingPolicy names an auditor that is able to decrypt the traced fields of the records it is attached to.
type TracingPolicy struct {
	EncryptionKey   ed25519.PublicKey
	AssetTracing    bool
	IdentityTracing bool
}

// NewTracingPolicy returns a TracingPolicy that traces the amount and the asset type of a record.
func NewTracingPolicy(encryptionKey ed25519.PublicKey, identityTracing bool) TracingPolicy {
	return TracingPolicy{
		EncryptionKey:   encryptionKey,
		AssetTracing:    true,
		IdentityTracing: identityTracing,
	}
}

// Bytes returns a marshaled version of the TracingPolicy.
func (t TracingPolicy) Bytes() []byte {
	return marshalutil.New(ed25519.PublicKeySize + 2*marshalutil.BoolSize).
		WriteBytes(t.EncryptionKey.Bytes()).
		WriteBool(t.AssetTracing).
		WriteBool(t.IdentityTracing).
		Bytes()
}

// String returns a human readable version of the TracingPolicy.
func (t TracingPolicy) String() string {
	return stringify.Struct("TracingPolicy",
		stringify.StructField("encryptionKey", t.EncryptionKey.String()),
		stringify.StructField("assetTracing", t.AssetTracing),
		stringify.StructField("identityTracing", t.IdentityTracing),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TracingPolicies //////////////////////////////////////////////////////////////////////////////////////////////

// TracingPolicies is the (possibly empty) list of tracing policies that apply to a single input or output.
type TracingPolicies []TracingPolicy

// Clone returns a copy of the list.
func (t TracingPolicies) Clone() TracingPolicies {
	if t == nil {
		return nil
	}

	return append(make(TracingPolicies, 0, len(t)), t...)
}

// Bytes returns a marshaled version of the TracingPolicies.
func (t TracingPolicies) Bytes() []byte {
	marshalUtil := marshalutil.New().WriteUint32(uint32(len(t)))
	for _, policy := range t {
		marshalUtil.WriteBytes(policy.Bytes())
	}

	return marshalUtil.Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region IdentityCommitment ///////////////////////////////////////////////////////////////////////////////////////////

// IdentityCommitment is an optional commitment to the identity attributes of the owner of a record.
type IdentityCommitment [CommitmentLength]byte

// Bytes returns a marshaled version of the IdentityCommitment.
func (i IdentityCommitment) Bytes() []byte {
	return i[:]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region IdentityCredential ///////////////////////////////////////////////////////////////////////////////////////////

// IdentityCredential bundles the credential material that is needed to attach identity tracing to an output.
type IdentityCredential struct {
	UserSecretKey []byte
	Credential    []byte
	CommitmentKey []byte
}

// Validate checks that all parts of the credential are present.
func (i *IdentityCredential) Validate() error {
	switch {
	case len(i.UserSecretKey) == 0:
		return errors.New("identity credential is missing the user secret key")
	case len(i.Credential) == 0:
		return errors.New("identity credential is missing the credential")
	case len(i.CommitmentKey) == 0:
		return errors.New("identity credential is missing the commitment key")
	default:
		return nil
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
