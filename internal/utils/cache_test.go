package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) os.FileInfo {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()
	info := writeTempFile(t, t.TempDir(), "a.class", "x")

	cache.SetWithFileInfo("key1", 42, info)
	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, 42, value)

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)
}

func TestCache_GetValid(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache[string, string]()
	info := writeTempFile(t, dir, "Foo.class", "first")

	cache.SetWithFileInfo("Foo.class", "parsed", info)

	value, ok := cache.GetValid("Foo.class", info)
	require.True(t, ok)
	assert.Equal(t, "parsed", value)

	// a size change invalidates the entry and removes it
	changed := writeTempFile(t, dir, "Foo.class", "second version")
	_, ok = cache.GetValid("Foo.class", changed)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())

	stats := cache.GetStats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestCache_GetValid_ModTime(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache[string, int]()
	info := writeTempFile(t, dir, "Bar.class", "same")
	cache.SetWithFileInfo("Bar.class", 1, info)

	later := info.ModTime().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "Bar.class"), later, later))
	touched, err := os.Stat(filepath.Join(dir, "Bar.class"))
	require.NoError(t, err)

	_, ok := cache.GetValid("Bar.class", touched)
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache[string, string]()
	info := writeTempFile(t, t.TempDir(), "a.class", "x")

	cache.SetWithFileInfo("key1", "value1", info)
	cache.SetWithFileInfo("key2", "value2", info)
	_, _ = cache.GetValid("key1", info)
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, CacheStats{}, cache.GetStats())
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[string, int]()
	info := writeTempFile(t, t.TempDir(), "a.class", "x")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d_%d", id, j)
				cache.SetWithFileInfo(key, id*100+j, info)
				_, _ = cache.GetValid(key, info)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1000, cache.Size())
	assert.Equal(t, 1000, cache.GetStats().Hits)
}
