package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilecrop.yaml")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Configuration written to "+path)

	data, err := os.ReadFile(path) //nolint:gosec // G304: test output path
	require.NoError(t, err)
	assert.Contains(t, string(data), "overlap_ratio: 0.5")

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "init", path})
	require.Error(t, rootCmd.Execute(), "existing file needs --force")

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "show"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "tiling:")
	assert.Contains(t, buf.String(), "overlap_ratio: 0.5")
}
