package password

import (
	"fmt"
	"strings"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// MultiHasher hashes with one preferred algorithm and verifies by the
// algorithm named in the stored hash, so changing PASSWORD_ALGORITHM keeps
// existing accounts working. Hashes of the other algorithm report NeedsRehash.
type MultiHasher struct {
	algorithm string
	bcrypt    *BcryptHasher
	argon2id  *Argon2idHasher
}

func NewMulti(algorithm string, bcryptHasher *BcryptHasher, argon2idHasher *Argon2idHasher) (*MultiHasher, error) {
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf(errUnknownAlgorithmFmt, algorithm)
	}
	return &MultiHasher{algorithm: algorithm, bcrypt: bcryptHasher, argon2id: argon2idHasher}, nil
}

// Algorithm is the algorithm new hashes are produced with.
func (h *MultiHasher) Algorithm() string {
	return h.algorithm
}

func (h *MultiHasher) Hash(plaintext string) (string, error) {
	return h.hasherFor(h.algorithm).Hash(plaintext)
}

func (h *MultiHasher) Verify(plaintext, encoded string) bool {
	algorithm := algorithmOf(encoded)
	if algorithm == "" {
		return false
	}
	return h.hasherFor(algorithm).Verify(plaintext, encoded)
}

func (h *MultiHasher) NeedsRehash(encoded string) bool {
	if algorithmOf(encoded) != h.algorithm {
		return true
	}
	return h.hasherFor(h.algorithm).NeedsRehash(encoded)
}

func (h *MultiHasher) hasherFor(algorithm string) Hasher {
	if algorithm == AlgorithmArgon2id {
		return h.argon2id
	}
	return h.bcrypt
}

// algorithmOf reads the algorithm from an encoded hash, or "" when unknown.
func algorithmOf(encoded string) string {
	if strings.HasPrefix(encoded, argon2Prefix) {
		return AlgorithmArgon2id
	}
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(encoded, prefix) {
			return AlgorithmBcrypt
		}
	}
	return ""
}
