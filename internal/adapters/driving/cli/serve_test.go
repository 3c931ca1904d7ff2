package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Flags(t *testing.T) {
	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	stdio := serveCmd.Flags().Lookup("stdio")
	require.NotNil(t, stdio)
	assert.Equal(t, "false", stdio.DefValue)
}

func TestServeCmd_Long(t *testing.T) {
	assert.Contains(t, serveCmd.Long, "--stdio")
	assert.Contains(t, serveCmd.Long, "http://localhost:3000/mcp")
}

func TestServeCmd_InvalidPort(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "--no-config", "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "--no-config", "serve", "extra")

	assert.Error(t, err)
}

func TestServeCmd_NextFreeFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("next-free")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
