package erase

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"time"
)

// FillPolicy selects the random generator used for overwrite data.
type FillPolicy string

const (
	// PolicyFast uses a seeded PRNG. Statistically random output,
	// enough to defeat straightforward recovery, and much faster
	// than the crypto source on large files.
	PolicyFast FillPolicy = "fast"
	// PolicyCrypto uses the operating system CSPRNG.
	PolicyCrypto FillPolicy = "crypto"
)

// Filler fills a buffer with fresh random bytes before each write.
type Filler func([]byte) error

// NewFiller returns the Filler for a policy.
func NewFiller(policy FillPolicy) (Filler, error) {
	switch policy {
	case PolicyFast:
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return func(buf []byte) error {
			// (*rand.Rand).Read never fails.
			rng.Read(buf)
			return nil
		}, nil

	case PolicyCrypto:
		return func(buf []byte) error {
			if _, err := crand.Read(buf); err != nil {
				return fmt.Errorf("failed to generate random data: %w", err)
			}
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown fill policy: %s", policy)
	}
}
