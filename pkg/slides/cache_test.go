package slides

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-slides/internal/testdeck"
)

func TestTemplateCache_Basic(t *testing.T) {
	cache := NewTemplateCache(2, 0)
	a, b, c := &Template{name: "a"}, &Template{name: "b"}, &Template{name: "c"}

	cache.Set("a", a)
	cache.Set("b", b)
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	// "b" is now least recently used
	cache.Set("c", c)
	assert.Equal(t, 2, cache.Size())
	_, ok = cache.Get("b")
	assert.False(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)

	cache.Remove("a")
	assert.Equal(t, 1, cache.Size())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_Disabled(t *testing.T) {
	cache := NewTemplateCache(0, 0)
	cache.Set("a", &Template{})
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestTemplateCache_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewTemplateCache(10, time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("a", &Template{})
	_, ok := cache.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_Concurrent(t *testing.T) {
	cache := NewTemplateCache(5, 0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%8))
			cache.Set(key, &Template{name: key})
			cache.Get(key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 5)
}

func TestEnginePrepareFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := testdeck.New().Slide(testdeck.TextShape(2, "T", "{{jobid}}")).WriteFile(t, dir, "t.pptx")

	engine, err := New()
	require.NoError(t, err)

	first, err := engine.PrepareFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SlideCount())

	// cached copy is returned even after the file disappears
	require.NoError(t, os.Remove(path))
	second, err := engine.PrepareFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	engine.ClearCache()
	_, err = engine.PrepareFile(path)
	assert.Error(t, err)
}

func TestEnginePrepareFileErrors(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	_, err = engine.PrepareFile(filepath.Join(t.TempDir(), "missing.pptx"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	_, err = engine.PrepareFile(bad)
	var derr *DocumentError
	assert.ErrorAs(t, err, &derr)

	empty := testdeck.New().WriteFile(t, t.TempDir(), "empty.pptx")
	_, err = engine.PrepareFile(empty)
	assert.ErrorAs(t, err, &derr)
}
