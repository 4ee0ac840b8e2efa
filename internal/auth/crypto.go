package auth

import (
	"fmt"

	"github.com/mlbahja/01-blog/pkg/password"
)

// timingGuard holds a real hash produced by the configured hasher so that a
// login for an unknown identifier pays the same verify cost as a known one.
type timingGuard struct {
	hasher    password.Hasher
	dummyHash string
}

func newTimingGuard(hasher password.Hasher) (*timingGuard, error) {
	hash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf(msgDummyHashFailedFmt, err)
	}
	return &timingGuard{hasher: hasher, dummyHash: hash}, nil
}

// burn runs a verify whose result is discarded.
func (g *timingGuard) burn(plaintext string) {
	_ = g.hasher.Verify(plaintext, g.dummyHash)
}
