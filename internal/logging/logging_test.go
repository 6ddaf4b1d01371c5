package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	_, err = ParseLevel("chatty")
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"", "text", "json", "logfmt"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cargo.log")
	logger, closer, err := New(config.LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug("container started", "id", "generic")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"container started"`), string(data))
	assert.Contains(t, string(data), `"id":"generic"`)
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "nope"})
	assert.Error(t, err)
}
