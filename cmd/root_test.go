package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "resolve", "compare", "health"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "data-scraper", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestResolveCommand_Flags(t *testing.T) {
	flag := resolveCmd.Flags().Lookup("refresh")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestCompareCommand_Flags(t *testing.T) {
	flag := compareCmd.Flags().Lookup("chart")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestCommands_ArgCounts(t *testing.T) {
	assert.Error(t, resolveCmd.Args(resolveCmd, nil))
	assert.NoError(t, resolveCmd.Args(resolveCmd, []string{"Apple"}))

	assert.Error(t, compareCmd.Args(compareCmd, []string{"Apple"}))
	assert.NoError(t, compareCmd.Args(compareCmd, []string{"Apple", "Microsoft"}))
}
