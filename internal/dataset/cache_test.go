package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReturnsSharedDatasetUntilInvalidated(t *testing.T) {
	path := writeFile(t, "faculty.csv", []byte(facultyCSV))
	cache := NewCache(newTestLoader(t))
	ctx := context.Background()

	first, err := cache.Get(ctx, path)
	require.NoError(t, err)
	again, err := cache.Get(ctx, filepath.Join(filepath.Dir(path), ".", "faculty.csv"))
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, os.WriteFile(path, []byte(facultyCSV+"Dan Doe,,,Retail,\n"), 0o644))
	stale, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Len(t, stale.Records, 3, "file changes are not picked up mid-session")

	cache.Invalidate(path)
	fresh, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Len(t, fresh.Records, 4)
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")
	cache := NewCache(newTestLoader(t))
	ctx := context.Background()

	_, err := cache.Get(ctx, path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(facultyCSV), 0o644))
	ds, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)
}

func TestCacheConcurrentGet(t *testing.T) {
	path := writeFile(t, "faculty.csv", []byte(facultyCSV))
	cache := NewCache(newTestLoader(t))

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(context.Background(), path)
			if err == nil {
				results[i] = ds
			}
		}(i)
	}
	wg.Wait()
	for _, ds := range results {
		require.NotNil(t, ds)
		assert.Same(t, results[0], ds)
	}
}

func TestCacheHonoursCancelledContext(t *testing.T) {
	cache := NewCache(newTestLoader(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeFile(t, "faculty.csv", []byte(facultyCSV))

	_, err := cache.Get(ctx, path)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestCacheInvalidateDuringLoadDropsStaleResult(t *testing.T) {
	cache := NewCache(newTestLoader(t))
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	cache.load = func(path string) (*Dataset, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return &Dataset{Path: path, Encoding: fmt.Sprint(n)}, nil
	}
	ctx := context.Background()

	done := make(chan *Dataset)
	go func() {
		ds, err := cache.Get(ctx, "faculty.csv")
		if err != nil {
			ds = nil
		}
		done <- ds
	}()
	<-started
	cache.Invalidate("faculty.csv")
	close(release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, "1", stale.Encoding, "callers already waiting get the load they joined")

	fresh, err := cache.Get(ctx, "faculty.csv")
	require.NoError(t, err)
	assert.Equal(t, "2", fresh.Encoding)
	again, err := cache.Get(ctx, "faculty.csv")
	require.NoError(t, err)
	assert.Same(t, fresh, again)
	assert.Equal(t, int32(2), calls.Load())
}
