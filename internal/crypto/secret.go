package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// SecretSize is the number of random bytes in a generated signing secret.
const SecretSize = 32

// ErrSecretExists is returned by WriteSecretFile when the file is present
// and overwriting was not requested.
var ErrSecretExists = errors.New("secret file already exists")

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

// GenerateSecret returns a hex-encoded SecretSize-byte secret.
func GenerateSecret() (string, error) {
	b, err := RandomBytes(SecretSize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WriteSecretFile writes a fresh secret to path with owner-only
// permissions and returns it.
func WriteSecretFile(path string, force bool) (string, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s: %w", path, ErrSecretExists)
		}
	}
	secret, err := GenerateSecret()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	return secret, nil
}
