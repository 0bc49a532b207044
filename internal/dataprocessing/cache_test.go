package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCacheLoadReusesDataset(t *testing.T) {
	path := writeTempCSV(t, sampleHeader+"toonjoy,camp-01,2024-03-01,1,10,banner\n")
	cache := NewCache(nil, newTestProcessor(), nil)

	first, err := cache.Load(context.Background(), path)
	require.NoError(t, err)

	second, err := cache.Load(context.Background(), path)
	require.NoError(t, err)

	// Unchanged file: the very same dataset comes back.
	assert.Same(t, first, second)
}

func TestCacheLoadReloadsOnChange(t *testing.T) {
	path := writeTempCSV(t, sampleHeader+"toonjoy,camp-01,2024-03-01,1,10,banner\n")
	cache := NewCache(nil, newTestProcessor(), nil)

	first, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, first.Served, 1)

	content := sampleHeader +
		"toonjoy,camp-01,2024-03-01,1,10,banner\n" +
		"kidzsy,camp-02,2024-03-01,2,20,sidebar\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	// mtime resolution on some filesystems is coarse; the size change
	// above is what guarantees detection.
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Second)))

	second, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, second.Served, 2)
}

func TestCacheInvalidate(t *testing.T) {
	path := writeTempCSV(t, sampleHeader+"toonjoy,camp-01,2024-03-01,1,10,banner\n")
	cache := NewCache(nil, newTestProcessor(), nil)

	first, err := cache.Load(context.Background(), path)
	require.NoError(t, err)

	cache.Invalidate(path)

	second, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCacheLoadMissingFile(t *testing.T) {
	cache := NewCache(nil, newTestProcessor(), nil)
	_, err := cache.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
