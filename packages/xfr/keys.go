package xfr

import (
	"encoding/base64"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/mr-tron/base58"
)

// DefaultBurnPublicKey is the conventional all-zero public key whose records can never be spent. Fees are paid to it.
var DefaultBurnPublicKey = ed25519.PublicKey{}

// KeyPairFromSeed derives the ed25519 KeyPair that belongs to the given 32 byte seed.
func KeyPairFromSeed(seed []byte) (keyPair ed25519.KeyPair, err error) {
	if len(seed) != ed25519.SeedSize {
		return keyPair, errors.Errorf("seed must be %d bytes long, got %d", ed25519.SeedSize, len(seed))
	}

	keyPair.PrivateKey = ed25519.PrivateKeyFromSeed(seed)
	keyPair.PublicKey = keyPair.PrivateKey.Public()

	return keyPair, nil
}

// PublicKeyToBase64URL returns the url safe base64 encoding of the key that the ledger uses to index owned records.
func PublicKeyToBase64URL(publicKey ed25519.PublicKey) string {
	return base64.URLEncoding.EncodeToString(publicKey.Bytes())
}

// PublicKeyFromString parses a public key from either its base58 or its url safe base64 encoding.
func PublicKeyFromString(publicKeyString string) (publicKey ed25519.PublicKey, err error) {
	publicKeyBytes, base58Err := base58.Decode(publicKeyString)
	if base58Err != nil || len(publicKeyBytes) != ed25519.PublicKeySize {
		if publicKeyBytes, err = base64.URLEncoding.DecodeString(publicKeyString); err != nil {
			return publicKey, errors.Wrapf(ErrParseBytesFailed, "failed to decode public key %s", publicKeyString)
		}
	}

	if publicKey, _, err = ed25519.PublicKeyFromBytes(publicKeyBytes); err != nil {
		return publicKey, errors.Wrapf(ErrParseBytesFailed, "failed to parse public key %s: %s", publicKeyString, err.Error())
	}

	return publicKey, nil
}
