package note

import (
	"crypto/cipher"
	"crypto/sha512"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"go.dedis.ch/kyber/v3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// region sealing //////////////////////////////////////////////////////////////////////////////////////////////////////

// seal encrypts the plaintext to the holder of the given ed25519 key. An ephemeral key is drawn from the CSPRNG, the
// shared secret is derived with Diffie-Hellman on edwards25519 and the payload is encrypted with ChaCha20-Poly1305.
func seal(rng io.Reader, recipient ed25519.PublicKey, plaintext []byte) (ephemeralKey []byte, ciphertext []byte, err error) {
	recipientPoint := suite.Point()
	if err = recipientPoint.UnmarshalBinary(recipient.Bytes()); err != nil {
		return nil, nil, errors.Wrapf(ErrMemo, "recipient key %s is not a valid curve point: %s", recipient, err.Error())
	}

	ephemeralSecret := randomScalar(rng)
	if ephemeralKey, err = suite.Point().Mul(ephemeralSecret, nil).MarshalBinary(); err != nil {
		return nil, nil, errors.Wrapf(ErrMemo, "failed to marshal ephemeral key: %s", err.Error())
	}

	aead, err := memoCipher(suite.Point().Mul(ephemeralSecret, recipientPoint), ephemeralKey)
	if err != nil {
		return nil, nil, err
	}

	return ephemeralKey, aead.Seal(nil, make([]byte, chacha20poly1305.NonceSize), plaintext, recipient.Bytes()), nil
}

// unseal reverses seal with the private key of the recipient.
func unseal(keyPair ed25519.KeyPair, ephemeralKey []byte, ciphertext []byte) (plaintext []byte, err error) {
	ephemeralPoint := suite.Point()
	if err = ephemeralPoint.UnmarshalBinary(ephemeralKey); err != nil {
		return nil, errors.Wrapf(ErrMemo, "ephemeral key is not a valid curve point: %s", err.Error())
	}

	aead, err := memoCipher(suite.Point().Mul(secretScalar(keyPair.PrivateKey), ephemeralPoint), ephemeralKey)
	if err != nil {
		return nil, err
	}

	if plaintext, err = aead.Open(nil, make([]byte, chacha20poly1305.NonceSize), ciphertext, keyPair.PublicKey.Bytes()); err != nil {
		return nil, errors.Wrapf(ErrMemo, "failed to decrypt memo: %s", err.Error())
	}

	return plaintext, nil
}

func memoCipher(sharedSecret kyber.Point, ephemeralKey []byte) (aead cipher.AEAD, err error) {
	sharedSecretBytes, err := sharedSecret.MarshalBinary()
	if err != nil {
		return nil, errors.Wrapf(ErrMemo, "failed to marshal shared secret: %s", err.Error())
	}

	key := blake2b.Sum256(byteutils.ConcatBytes(sharedSecretBytes, ephemeralKey))
	if aead, err = chacha20poly1305.New(key[:]); err != nil {
		return nil, errors.Wrapf(ErrMemo, "failed to create memo cipher: %s", err.Error())
	}

	return aead, nil
}

// secretScalar derives the edwards25519 scalar that belongs to an ed25519 private key (clamped SHA-512 of the seed).
func secretScalar(privateKey ed25519.PrivateKey) kyber.Scalar {
	digest := sha512.Sum512(privateKey[:ed25519.SeedSize])
	digest[0] &= 248
	digest[31] &= 127
	digest[31] |= 64

	return suite.Scalar().SetBytes(digest[:32])
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region owner memo payload ///////////////////////////////////////////////////////////////////////////////////////////

const ownerMemoPayloadSize = marshalutil.Uint64Size + xfr.AssetTypeLength + 2*32

func ownerMemoPayload(record *xfr.OpenRecord) []byte {
	return marshalutil.New(ownerMemoPayloadSize).
		WriteUint64(record.Amount).
		WriteBytes(record.AssetType.Bytes()).
		WriteBytes(record.AmountBlinding[:]).
		WriteBytes(record.AssetBlinding[:]).
		Bytes()
}

func parseOwnerMemoPayload(payload []byte, record *xfr.OpenRecord) (err error) {
	marshalUtil := marshalutil.New(payload)
	if record.Amount, err = marshalUtil.ReadUint64(); err != nil {
		return errors.Wrapf(ErrMemo, "failed to parse amount: %s", err.Error())
	}
	if record.AssetType, err = xfr.AssetTypeFromMarshalUtil(marshalUtil); err != nil {
		return errors.Wrapf(ErrMemo, "failed to parse asset type: %s", err.Error())
	}
	amountBlinding, err := marshalUtil.ReadBytes(32)
	if err != nil {
		return errors.Wrapf(ErrMemo, "failed to parse amount blinding: %s", err.Error())
	}
	copy(record.AmountBlinding[:], amountBlinding)
	assetBlinding, err := marshalUtil.ReadBytes(32)
	if err != nil {
		return errors.Wrapf(ErrMemo, "failed to parse asset blinding: %s", err.Error())
	}
	copy(record.AssetBlinding[:], assetBlinding)

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TracerMemo ///////////////////////////////////////////////////////////////////////////////////////////////////

// TracerMemo reveals the traced fields of a record to the auditor that owns EncryptionKey.
type TracerMemo struct {
	EncryptionKey ed25519.PublicKey
	EphemeralKey  []byte
	Ciphertext    []byte
}

// Clone returns a deep copy of the TracerMemo.
func (t *TracerMemo) Clone() *TracerMemo {
	if t == nil {
		return nil
	}

	return &TracerMemo{
		EncryptionKey: t.EncryptionKey,
		EphemeralKey:  append([]byte(nil), t.EphemeralKey...),
		Ciphertext:    append([]byte(nil), t.Ciphertext...),
	}
}

// TracedRecord is what an auditor learns from a TracerMemo.
type TracedRecord struct {
	Amount             uint64
	AssetType          xfr.AssetType
	IdentityCommitment *xfr.IdentityCommitment
}

func newTracerMemo(rng io.Reader, policy xfr.TracingPolicy, record *xfr.OpenRecord, identityCommitment *xfr.IdentityCommitment) (*TracerMemo, error) {
	marshalUtil := marshalutil.New().WriteBool(policy.AssetTracing)
	if policy.AssetTracing {
		marshalUtil.WriteUint64(record.Amount).WriteBytes(record.AssetType.Bytes())
	}
	traceIdentity := policy.IdentityTracing && identityCommitment != nil
	marshalUtil.WriteBool(traceIdentity)
	if traceIdentity {
		marshalUtil.WriteBytes(identityCommitment.Bytes())
	}

	ephemeralKey, ciphertext, err := seal(rng, policy.EncryptionKey, marshalUtil.Bytes())
	if err != nil {
		return nil, err
	}

	return &TracerMemo{
		EncryptionKey: policy.EncryptionKey,
		EphemeralKey:  ephemeralKey,
		Ciphertext:    ciphertext,
	}, nil
}

// Open decrypts the memo with the key pair of the auditor.
func (t *TracerMemo) Open(auditor ed25519.KeyPair) (tracedRecord *TracedRecord, err error) {
	if auditor.PublicKey != t.EncryptionKey {
		return nil, errors.Wrapf(ErrMemo, "memo is addressed to %s", t.EncryptionKey)
	}

	payload, err := unseal(auditor, t.EphemeralKey, t.Ciphertext)
	if err != nil {
		return nil, err
	}

	tracedRecord = &TracedRecord{}
	marshalUtil := marshalutil.New(payload)
	assetTraced, err := marshalUtil.ReadBool()
	if err != nil {
		return nil, errors.Wrapf(ErrMemo, "failed to parse tracer memo: %s", err.Error())
	}
	if assetTraced {
		if tracedRecord.Amount, err = marshalUtil.ReadUint64(); err != nil {
			return nil, errors.Wrapf(ErrMemo, "failed to parse traced amount: %s", err.Error())
		}
		if tracedRecord.AssetType, err = xfr.AssetTypeFromMarshalUtil(marshalUtil); err != nil {
			return nil, errors.Wrapf(ErrMemo, "failed to parse traced asset type: %s", err.Error())
		}
	}
	identityTraced, err := marshalUtil.ReadBool()
	if err != nil {
		return nil, errors.Wrapf(ErrMemo, "failed to parse tracer memo: %s", err.Error())
	}
	if identityTraced {
		identityBytes, readErr := marshalUtil.ReadBytes(xfr.CommitmentLength)
		if readErr != nil {
			return nil, errors.Wrapf(ErrMemo, "failed to parse traced identity: %s", readErr.Error())
		}
		tracedRecord.IdentityCommitment = &xfr.IdentityCommitment{}
		copy(tracedRecord.IdentityCommitment[:], identityBytes)
	}

	return tracedRecord, nil
}

// Bytes returns a marshaled version of the TracerMemo.
func (t *TracerMemo) Bytes() []byte {
	return marshalutil.New().
		WriteBytes(t.EncryptionKey.Bytes()).
		WriteUint32(uint32(len(t.EphemeralKey))).
		WriteBytes(t.EphemeralKey).
		WriteUint32(uint32(len(t.Ciphertext))).
		WriteBytes(t.Ciphertext).
		Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
