package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, "prompts"), store.Dir())
}

func TestPromptStore_Load_MissingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, ok, err := store.Load(driven.PromptChatSystem)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, prompt)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "store must not create files")
}

func TestPromptStore_Load_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, driven.PromptChatSystem+".txt")
	require.NoError(t, os.WriteFile(path, []byte("  You only answer about oncology trials.\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, ok, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "You only answer about oncology trials.", prompt)

	// Cached: later edits are not seen by this store.
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0600))
	prompt, _, err = store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "You only answer about oncology trials.", prompt)
}

func TestPromptStore_Load_EmptyFileIsNoOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_system.txt"), []byte("   \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, ok, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.False(t, ok)
}
