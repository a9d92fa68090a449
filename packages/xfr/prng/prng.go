// Package prng provides the cryptographically secure pseudo random number generator that is handed to every record and
// transfer construction call.
package prng

import (
	"crypto/rand"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the amount of bytes that are needed to seed a PRNG.
const SeedSize = chacha20.KeySize

// PRNG is a ChaCha20 keystream that implements io.Reader. Two instances created from the same seed produce the same
// stream.
type PRNG struct {
	cipher *chacha20.Cipher
	mutex  sync.Mutex
}

// New creates a PRNG that is deterministically derived from the given seed.
func New(seed [SeedSize]byte) *PRNG {
	// key and nonce have fixed sizes so the constructor can not fail
	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		panic(err)
	}

	return &PRNG{cipher: cipher}
}

// FromEntropy creates a PRNG that is seeded from the operating system's entropy source.
func FromEntropy() (*PRNG, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errors.Wrap(err, "failed to read entropy for PRNG seed")
	}

	return New(seed), nil
}

// Read fills p with the next bytes of the keystream. It never fails.
func (p *PRNG) Read(b []byte) (n int, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i := range b {
		b[i] = 0
	}
	p.cipher.XORKeyStream(b, b)

	return len(b), nil
}
