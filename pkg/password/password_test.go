package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashers(t *testing.T) map[string]Hasher {
	t.Helper()
	b, err := NewBcrypt(MinCost)
	require.NoError(t, err)
	return map[string]Hasher{
		AlgorithmBcrypt: b,
		AlgorithmArgon2id: NewArgon2id(Argon2Params{
			Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32,
		}),
	}
}

func TestHashAndVerify(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			encoded, err := h.Hash("correct horse battery")
			require.NoError(t, err)
			assert.NotEqual(t, "correct horse battery", encoded)

			assert.True(t, h.Verify("correct horse battery", encoded))
			assert.False(t, h.Verify("correct horse batterY", encoded))
			assert.False(t, h.Verify("", encoded))
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("same-password")
			require.NoError(t, err)
			b, err := h.Hash("same-password")
			require.NoError(t, err)

			assert.NotEqual(t, a, b)
			assert.True(t, h.Verify("same-password", a))
			assert.True(t, h.Verify("same-password", b))
		})
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$2a$12$short",
		"$argon2id$v=19$m=0,t=0,p=0$$",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$!!!",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		strings.Repeat("$", 10),
	}

	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			for _, encoded := range malformed {
				assert.NotPanics(t, func() {
					assert.False(t, h.Verify("password", encoded))
				})
			}
		})
	}
}

func TestHashRejectsEmptyAndLong(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := h.Hash("")
			assert.ErrorIs(t, err, ErrPasswordEmpty)

			_, err = h.Hash(strings.Repeat("a", MaxLength+1))
			assert.ErrorIs(t, err, ErrPasswordTooLong)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := NewBcrypt(MinCost)
	require.NoError(t, err)
	strong, err := NewBcrypt(MinCost + 1)
	require.NoError(t, err)

	encoded, err := weak.Hash("password123")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(encoded))
	assert.True(t, strong.NeedsRehash(encoded))
	assert.True(t, strong.NeedsRehash("garbage"))
}

func TestNew(t *testing.T) {
	h, err := New("", MinCost)
	require.NoError(t, err)
	encoded, err := h.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$2a$"))

	h, err = New(AlgorithmArgon2id, 0)
	require.NoError(t, err)
	encoded, err = h.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	_, err = New("md5", 0)
	assert.Error(t, err)

	_, err = NewBcrypt(MaxCost + 1)
	assert.Error(t, err)
}

func TestMultiHasherVerifiesEitherAlgorithm(t *testing.T) {
	bcryptOnly, err := New(AlgorithmBcrypt, MinCost)
	require.NoError(t, err)
	legacy, err := bcryptOnly.Hash("correct-horse")
	require.NoError(t, err)

	h, err := New(AlgorithmArgon2id, MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify("correct-horse", legacy))
	assert.False(t, h.Verify("wrong-horse", legacy))
	assert.True(t, h.NeedsRehash(legacy), "hashes of the other algorithm are upgraded")

	current, err := h.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, h.Verify("correct-horse", current))
	assert.False(t, h.NeedsRehash(current))

	assert.True(t, bcryptOnly.Verify("correct-horse", legacy))
	assert.True(t, bcryptOnly.Verify("correct-horse", current))
	assert.True(t, bcryptOnly.NeedsRehash(current))
}

func TestMultiHasherRejectsUnknownFormat(t *testing.T) {
	h, err := New(AlgorithmBcrypt, MinCost)
	require.NoError(t, err)

	assert.False(t, h.Verify("correct-horse", "$md5$abc"))
	assert.False(t, h.Verify("correct-horse", ""))
	assert.True(t, h.NeedsRehash("$md5$abc"))

	_, err = NewMulti("scrypt", nil, nil)
	assert.Error(t, err)
}
