package utils

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusErrorUnwrapsThroughWrapping(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("handler: %w", Wrap(http.StatusConflict, "taken", base))

	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.Equal(t, "taken", MessageOf(err))
	assert.ErrorIs(t, err, base)
}

func TestStatusOfPlainError(t *testing.T) {
	err := errors.New("db exploded")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "Internal Server Error", MessageOf(err))
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(LoggerOptions{Level: "loud"})
	require.Error(t, err)

	_, err = NewLogger(LoggerOptions{Level: "info", Format: "xml"})
	require.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	logger, err := NewLogger(LoggerOptions{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
