package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MeKo-Tech/tilecrop/internal/config"
	"github.com/MeKo-Tech/tilecrop/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "tilecrop", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Same(t, rootCmd, GetRootCommand())
}

func TestRootCommandHelp(t *testing.T) {
	cmd := rootCmd
	t.Cleanup(func() { _ = rootCmd.Flags().Set("help", "false") })

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--help"})
	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "overlapping")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "Usage:")
}

func TestRootCommandSubcommands(t *testing.T) {
	subcommands := rootCmd.Commands()
	commandNames := make([]string, len(subcommands))
	for i, subcmd := range subcommands {
		commandNames[i] = subcmd.Name()
	}

	for _, expected := range []string{"crop", "plan", "config"} {
		assert.Contains(t, commandNames, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	cmd := rootCmd

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--definitely-not-a-flag"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRootCommandVersion(t *testing.T) {
	version.Version, version.GitCommit, version.BuildDate = "1.2.3", "abc123", "2024-01-01"
	t.Cleanup(func() {
		version.Version, version.GitCommit, version.BuildDate = "dev", "unknown", "unknown"
		_ = rootCmd.PersistentFlags().Set("version", "false")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--version"})
	require.NoError(t, rootCmd.Execute())

	output := strings.TrimSpace(buf.String())
	assert.Contains(t, output, "tilecrop version 1.2.3")
	assert.Contains(t, output, "Commit: abc123")
	assert.Contains(t, output, "Date: 2024-01-01")
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.True(t, newLogger(&cfg).Handler().Enabled(t.Context(), 0))
	assert.False(t, newLogger(&cfg).Handler().Enabled(t.Context(), -4))

	cfg.LogLevel = "error"
	assert.False(t, newLogger(&cfg).Handler().Enabled(t.Context(), 4))

	cfg.Verbose = true
	assert.True(t, newLogger(&cfg).Handler().Enabled(t.Context(), -4), "verbose enables debug")
}
