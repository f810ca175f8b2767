package crypto

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	raw, err := hex.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, SecretSize)
	assert.NotEqual(t, a, b)
}

func TestWriteSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")

	first, err := WriteSecretFile(path, false)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, strings.TrimSpace(string(data)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = WriteSecretFile(path, false)
	assert.ErrorIs(t, err, ErrSecretExists)

	second, err := WriteSecretFile(path, true)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
