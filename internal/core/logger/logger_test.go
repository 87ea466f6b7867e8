package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-storefront/internal/core/config"
)

func TestFromConfigWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, closer := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Filename: file, MaxSizeMB: 1},
	})
	l.Info("order created")
	l.Debug("dropped below level")
	closer()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"order created"`)
	assert.NotContains(t, string(b), "dropped below level")
}

func TestBuildFallsBackToInfoOnBadLevel(t *testing.T) {
	l, closer := Build(Options{Level: "loud"})
	defer closer()
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(0))
}
