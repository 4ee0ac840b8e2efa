package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Prefix      = "$argon2id$"
	argon2EncodedFmt  = "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	argon2ParamsFmt   = "m=%d,t=%d,p=%d"
	argon2VersionFmt  = "v=%d"
	argon2SaltLen     = 16
	argon2Segments    = 6
	errReadSaltFmt    = "failed to generate salt: %w"
	argon2DefaultTime = 1
	argon2DefaultMem  = 64 * 1024
	argon2DefaultPar  = 4
	argon2DefaultKey  = 32
)

// Argon2Params are the cost parameters encoded into every argon2id hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    argon2DefaultTime,
		Memory:  argon2DefaultMem,
		Threads: argon2DefaultPar,
		KeyLen:  argon2DefaultKey,
	}
}

type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2id(params Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

func (h *Argon2idHasher) Hash(plaintext string) (string, error) {
	if err := checkLength(plaintext); err != nil {
		return "", err
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf(errReadSaltFmt, err)
	}

	p := h.params
	key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf(argon2EncodedFmt,
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(plaintext, encoded string) bool {
	p, salt, key, ok := decodeArgon2(encoded)
	if !ok {
		return false
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

func (h *Argon2idHasher) NeedsRehash(encoded string) bool {
	p, _, _, ok := decodeArgon2(encoded)
	if !ok {
		return true
	}
	return p.Time < h.params.Time || p.Memory < h.params.Memory || p.Threads < h.params.Threads
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, bool) {
	var p Argon2Params

	if !strings.HasPrefix(encoded, argon2Prefix) {
		return p, nil, nil, false
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != argon2Segments {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], argon2VersionFmt, &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	if _, err := fmt.Sscanf(parts[3], argon2ParamsFmt, &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, false
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}
	p.KeyLen = uint32(len(key))

	return p, salt, key, true
}
