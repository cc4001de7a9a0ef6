// Package password provides argon2id password hashing and verification.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters (OWASP baseline).
const (
	hashIterations  = 1
	hashMemory      = 64 * 1024 // KiB
	hashParallelism = 4
	saltLength      = 16
	keyLength       = 32
)

// ErrMalformedDigest reports a digest that is not a valid PHC argon2id string.
var ErrMalformedDigest = errors.New("malformed password digest")

// Hasher hashes and verifies passwords with argon2id. Digests use the PHC
// string format, so each digest carries its own salt and parameters.
type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Hash produces a salted argon2id digest of password. Each call draws a
// fresh random salt, so hashing the same input twice yields different
// digests. The empty string is hashed like any other input.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashIterations, hashMemory, hashParallelism, keyLength)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	digest := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return digest, nil
}

// Verify reports whether password matches digest. A mismatch is
// (false, nil); only a digest that cannot be parsed is an error. The key
// comparison is constant-time.
func (h *Hasher) Verify(password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, ErrMalformedDigest
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedDigest, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}

	var memory, iterations, parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	// argon2.IDKey panics on zero iterations, and an attacker-supplied
	// memory parameter sizes the allocation, so bound both before use.
	if iterations == 0 {
		return false, fmt.Errorf("%w: iterations %d out of range", ErrMalformedDigest, iterations)
	}
	if memory == 0 || memory > 1<<20 {
		return false, fmt.Errorf("%w: memory %d out of range", ErrMalformedDigest, memory)
	}
	if parallelism == 0 || parallelism > 255 {
		return false, fmt.Errorf("%w: parallelism %d out of range", ErrMalformedDigest, parallelism)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	if len(want) == 0 || len(want) > 1<<10 {
		return false, fmt.Errorf("%w: key length %d out of range", ErrMalformedDigest, len(want))
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(parallelism), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
