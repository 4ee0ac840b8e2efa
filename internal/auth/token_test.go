package auth

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k3Jv9QzP1xLm8TrWc4YbN6sHd2GfA7Ue"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, time.Hour, "blog-test", WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func tokenKind(t *testing.T, err error) TokenErrorKind {
	t.Helper()
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok, "expected *TokenError, got %T", err)
	return tokenErr.Kind
}

func TestNewTokenCodecRejectsBadConfig(t *testing.T) {
	_, err := NewTokenCodec(testSecret, 0, "")
	assert.Error(t, err)

	_, err = NewTokenCodec(testSecret, -time.Minute, "")
	assert.Error(t, err)

	_, err = NewTokenCodec("", time.Hour, "")
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)}
	codec := newTestCodec(t, clock)

	issued, err := codec.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", issued.Subject)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), issued.IssuedAt)
	assert.True(t, issued.ExpiresAt.After(issued.IssuedAt))
	assert.Equal(t, time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))

	claims, err := codec.Parse(issued.Raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	_, err := codec.Issue("")
	assert.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	issued, err := codec.Issue("alice")
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Second)
	_, err = codec.Parse(issued.Raw)
	require.NoError(t, err, "token must be valid just before expiry")

	clock.Advance(time.Second)
	_, err = codec.Parse(issued.Raw)
	require.Error(t, err)
	assert.Equal(t, TokenExpired, tokenKind(t, err))
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestParseTamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	issued, err := codec.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(issued.Raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	claims, err := codec.Parse(tampered)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.Equal(t, TokenBadSignature, tokenKind(t, err))
}

func TestParseWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other, err := NewTokenCodec("a-completely-different-secret-value!", time.Hour, "blog-test", WithClock(clock.Now))
	require.NoError(t, err)

	issued, err := other.Issue("alice")
	require.NoError(t, err)

	_, err = newTestCodec(t, clock).Parse(issued.Raw)
	assert.Equal(t, TokenBadSignature, tokenKind(t, err))
}

func TestParseBadSignatureBeforeExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other, err := NewTokenCodec("a-completely-different-secret-value!", time.Hour, "blog-test", WithClock(clock.Now))
	require.NoError(t, err)
	issued, err := other.Issue("alice")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = newTestCodec(t, clock).Parse(issued.Raw)
	assert.Equal(t, TokenBadSignature, tokenKind(t, err))
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "blog-test",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = codec.Parse(hs512)
	assert.Equal(t, TokenBadSignature, tokenKind(t, err))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Parse(none)
	assert.Equal(t, TokenBadSignature, tokenKind(t, err))
}

func TestParseMalformed(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := codec.Parse(raw)
		require.Error(t, err, raw)
		assert.Equal(t, TokenMalformed, tokenKind(t, err), raw)
	}
}

func TestParseMissingExpiry(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice", Issuer: "blog-test"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Parse(raw)
	assert.Equal(t, TokenMalformed, tokenKind(t, err))
}
