package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost is the minimum bcrypt cost (4)
	MinCost = bcrypt.MinCost
	// DefaultCost is the recommended bcrypt cost (12)
	DefaultCost = 12
	// MaxCost is the maximum bcrypt cost (31)
	MaxCost = bcrypt.MaxCost
	// MaxLength is the longest password bcrypt will accept
	MaxLength = 72

	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	errHashPasswordFmt     = "failed to hash password: %w"
	errBcryptCostRangeFmt  = "bcrypt cost must be between %d and %d"
	errUnknownAlgorithmFmt = "unknown password algorithm %q"
)

var (
	ErrPasswordEmpty   = errors.New("password cannot be empty")
	ErrPasswordTooLong = fmt.Errorf("password must not exceed %d bytes", MaxLength)
)

// Hasher produces and checks salted one-way password hashes.
// Verify must return false, never panic, for malformed encoded input.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
	NeedsRehash(encoded string) bool
}

// New returns a hasher that hashes with the named algorithm and verifies
// hashes of every supported algorithm.
func New(algorithm string, bcryptCost int) (Hasher, error) {
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf(errUnknownAlgorithmFmt, algorithm)
	}

	bcryptHasher, err := NewBcrypt(bcryptCost)
	if err != nil {
		return nil, err
	}
	return NewMulti(algorithm, bcryptHasher, NewArgon2id(DefaultArgon2Params()))
}

type BcryptHasher struct {
	cost int
}

func NewBcrypt(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf(errBcryptCostRangeFmt, MinCost, MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash generates a bcrypt hash of the password
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if err := checkLength(plaintext); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf(errHashPasswordFmt, err)
	}

	return string(bytes), nil
}

// Verify checks if the password matches the hash
func (h *BcryptHasher) Verify(plaintext, encoded string) bool {
	if encoded == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
	return err == nil
}

// NeedsRehash checks if the hash was produced with a lower cost than configured
func (h *BcryptHasher) NeedsRehash(encoded string) bool {
	hashCost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return true
	}
	return hashCost < h.cost
}

func checkLength(plaintext string) error {
	if len(plaintext) == 0 {
		return ErrPasswordEmpty
	}
	if len(plaintext) > MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}
