package cache

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func useTempDir(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestWriteAndReadCache(t *testing.T) {
	useTempDir(t)

	assert.NoError(t, WriteCache(1, "# hello", "<h1>hello</h1>"))

	html, ok := ReadCache(1, "# hello", time.Hour)
	assert.True(t, ok)
	assert.Equal(t, "<h1>hello</h1>", html)
}

func TestReadCache_MissOnChangedContent(t *testing.T) {
	useTempDir(t)

	assert.NoError(t, WriteCache(1, "# hello", "<h1>hello</h1>"))

	_, ok := ReadCache(1, "# hello edited", time.Hour)
	assert.False(t, ok)
}

func TestReadCache_MissWhenStale(t *testing.T) {
	useTempDir(t)

	assert.NoError(t, WriteCache(1, "# hello", "<h1>hello</h1>"))

	path := GetCachePath(1, "# hello")
	stale := time.Now().Add(-48 * time.Hour)
	assert.NoError(t, os.Chtimes(path, stale, stale))

	_, ok := ReadCache(1, "# hello", 24*time.Hour)
	assert.False(t, ok)
}

func TestClearCache_RemovesAllVariants(t *testing.T) {
	useTempDir(t)

	assert.NoError(t, WriteCache(1, "v1", "<p>v1</p>"))
	assert.NoError(t, WriteCache(1, "v2", "<p>v2</p>"))
	assert.NoError(t, WriteCache(2, "other", "<p>other</p>"))

	assert.NoError(t, ClearCache(1))

	_, ok := ReadCache(1, "v1", time.Hour)
	assert.False(t, ok)
	_, ok = ReadCache(1, "v2", time.Hour)
	assert.False(t, ok)
	_, ok = ReadCache(2, "other", time.Hour)
	assert.True(t, ok)
}

func TestClearOldCache(t *testing.T) {
	useTempDir(t)

	assert.NoError(t, WriteCache(1, "old", "<p>old</p>"))
	assert.NoError(t, WriteCache(2, "new", "<p>new</p>"))

	oldPath := GetCachePath(1, "old")
	stale := time.Now().Add(-8 * 24 * time.Hour)
	assert.NoError(t, os.Chtimes(oldPath, stale, stale))

	assert.NoError(t, ClearOldCache(7 * 24 * time.Hour))

	_, ok := ReadCache(1, "old", 30*24*time.Hour)
	assert.False(t, ok)
	_, ok = ReadCache(2, "new", time.Hour)
	assert.True(t, ok)
}
