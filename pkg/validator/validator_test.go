package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "alice", false},
		{"valid with punctuation", "a.l_i-ce9", false},
		{"too short", "al", true},
		{"too long", strings.Repeat("a", 51), true},
		{"space", "ali ce", true},
		{"empty", "", true},
		{"symbol", "alice!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("alice@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("s3cret-pass"))
	assert.Error(t, Password("short"))
	assert.Error(t, Password(strings.Repeat("x", 73)))
}

func TestRegistrationFieldErrors(t *testing.T) {
	err := Registration{Username: "al", Email: "bad", Password: "goodpassword"}.Validate()
	fields := FieldErrors(err)

	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "password")

	assert.Nil(t, FieldErrors(Registration{Username: "alice", Email: "alice@example.com", Password: "goodpassword"}.Validate()))
}
