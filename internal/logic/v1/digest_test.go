package v1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSHA256Digest(t *testing.T) {
	d := SHA256Digest{}

	hash, err := d.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, secretHash, hash)

	assert.True(t, d.Matches(secretHash, "secret"))
	assert.True(t, d.Matches(strings.ToUpper(secretHash), "secret"))
	assert.False(t, d.Matches(secretHash, "Secret"))
	assert.False(t, d.Matches(secretHash[:10], "secret"))
	assert.False(t, d.Matches("", ""))
}

func TestBcryptDigest(t *testing.T) {
	d := BcryptDigest{Cost: bcrypt.MinCost}

	hash, err := d.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, d.Matches(hash, "secret"))
	assert.False(t, d.Matches(hash, "secreT"))
	assert.False(t, d.Matches(secretHash, "secret"), "a sha256 hex value is not a bcrypt hash")
}

func TestDigestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "sha256", false},
		{"sha256", "sha256", false},
		{" SHA256 ", "sha256", false},
		{"bcrypt", "bcrypt", false},
		{"md5", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DigestByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}
