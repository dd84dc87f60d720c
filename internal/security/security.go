package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	defaultIterations = 100000
	saltSize          = 16
	keySize           = 32
)

// Hasher derives and verifies password hashes. The encoded form is
// "<salt-hex>$<key-hex>", so verification depends only on the stored
// string itself.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using PBKDF2-HMAC-SHA256 with the default
// iteration count.
func NewHasher() *Hasher {
	return &Hasher{iterations: defaultIterations}
}

// NewHasherWithIterations allows tuning the work factor; values below 1
// fall back to the default. Intended for key rotation and tests.
func NewHasherWithIterations(iterations int) *Hasher {
	if iterations < 1 {
		iterations = defaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a salted hash of the plaintext with a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(plaintext), salt, h.iterations, keySize, sha256.New)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// Verify re-derives the key from the embedded salt and compares it in
// constant time. Malformed hashes verify as false.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	salt, key, ok := decode(encoded)
	if !ok {
		return false
	}
	derived := pbkdf2.Key([]byte(plaintext), salt, h.iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

func decode(encoded string) (salt, key []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 2 {
		return nil, nil, false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return nil, nil, false
	}
	key, err = hex.DecodeString(parts[1])
	if err != nil || len(key) == 0 {
		return nil, nil, false
	}
	return salt, key, true
}
