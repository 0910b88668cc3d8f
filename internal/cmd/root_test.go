package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootPersistentFlags(t *testing.T) {
	t.Parallel()

	t.Run("Accepted", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{"body.html": "<p>nothing</p>"})
		out, err := runCommand(t, fs, "--log-level", "debug", "--no-color", "scan", "body.html")
		require.NoError(t, err)
		assert.Contains(t, out, "no calls found")
	})

	t.Run("BadLogLevel", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{"body.html": "<p>nothing</p>"})
		_, err := runCommand(t, fs, "--log-level", "loud", "scan", "body.html")
		require.Error(t, err)
	})
}
