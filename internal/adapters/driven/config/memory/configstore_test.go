package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CopiesSeed(t *testing.T) {
	seed := map[string]any{"port": 8080}
	store := NewConfigStore(seed)
	seed["port"] = 1

	assert.Equal(t, 8080, store.GetInt("port"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore(nil)

	require.NoError(t, store.Set("openai.model", "gpt-4o"))

	val, ok := store.Get("openai.model")
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o", val)
	assert.Equal(t, "gpt-4o", store.GetString("openai.model"))

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetInt_Conversions(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"int":    3,
		"int64":  int64(4),
		"float":  5.0,
		"string": "6",
	})

	assert.Equal(t, 3, store.GetInt("int"))
	assert.Equal(t, 4, store.GetInt("int64"))
	assert.Equal(t, 5, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("string"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Equal(t, "", store.GetString("int"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("port", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("port")
		}()
	}
	wg.Wait()
}
