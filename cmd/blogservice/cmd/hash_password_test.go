package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mlbahja/01-blog/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--env-file", "testdata/missing.env"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHashPasswordFromArgument(t *testing.T) {
	t.Setenv("PASSWORD_ALGORITHM", "bcrypt")
	t.Setenv("BCRYPT_COST", "4")

	out, err := runRoot(t, "", "hash-password", "correct-horse")
	require.NoError(t, err)

	hash := strings.TrimSpace(lastLine(out))
	hasher, err := password.NewBcrypt(password.MinCost)
	require.NoError(t, err)
	assert.True(t, hasher.Verify("correct-horse", hash))
}

func TestHashPasswordFromStdin(t *testing.T) {
	t.Setenv("PASSWORD_ALGORITHM", "argon2id")

	out, err := runRoot(t, "battery-staple\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(lastLine(out))
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, password.NewArgon2id(password.DefaultArgon2Params()).Verify("battery-staple", hash))
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	t.Setenv("PASSWORD_ALGORITHM", "bcrypt")
	t.Setenv("BCRYPT_COST", "4")

	_, err := runRoot(t, "", "hash-password", "short")
	assert.Error(t, err)
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}
