package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
)

// sha256("secret")
const secretHash = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

var _ domain.CredentialStore = (*MapCredentialStore)(nil)

func TestMapCredentialStore(t *testing.T) {
	src := map[string]string{
		"alice": "  2BB80D537B1DA3E38BD30361AA855686BDE0EACD7162FEF6A25FE97BF527A25B\n",
		"bob":   "$2a$10$AbCdEfGhIjKlMnOpQrStUu",
	}
	s := NewMapCredentialStore(src)

	hash, ok := s.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, secretHash, hash)

	hash, ok = s.Lookup("bob")
	require.True(t, ok)
	assert.Equal(t, "$2a$10$AbCdEfGhIjKlMnOpQrStUu", hash, "non-hex hashes keep their case")

	_, ok = s.Lookup("Alice")
	assert.False(t, ok, "usernames are case-sensitive")

	src["carol"] = secretHash
	_, ok = s.Lookup("carol")
	assert.False(t, ok, "store must not alias the source map")
	assert.Equal(t, 2, s.Len())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentialFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		wantLen int
	}{
		{
			name:    "yaml",
			file:    "credentials.yaml",
			content: "alice: " + secretHash + "\nbob: \"" + secretHash + "\"\n",
			wantLen: 2,
		},
		{
			name:    "json",
			file:    "credentials.json",
			content: `{"alice": "` + secretHash + `"}`,
			wantLen: 1,
		},
		{
			name:    "empty file",
			file:    "empty.yaml",
			content: "",
			wantLen: 0,
		},
		{
			name:    "empty hash",
			file:    "bad.yaml",
			content: "alice: \"\"\n",
			wantErr: true,
		},
		{
			name:    "not a mapping",
			file:    "list.yaml",
			content: "- alice\n- bob\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := LoadCredentialFile(writeFile(t, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, store.Len())
			if tt.wantLen > 0 {
				hash, ok := store.Lookup("alice")
				assert.True(t, ok)
				assert.Equal(t, secretHash, hash)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCredentialFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
