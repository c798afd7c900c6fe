package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestCache(t *testing.T, maxSize int64) *Cache {
	t.Helper()
	c, err := New(Config{Dir: t.TempDir(), MaxSize: maxSize})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestCache_GetPut(t *testing.T) {
	c := newTestCache(t, 1<<20)

	data := []byte("\x00asm wasm bytes")
	if err := c.Put("client", data); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}

	got, found := c.Get("client")
	if !found {
		t.Fatal("Data not found in cache")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Retrieved data doesn't match: got %q, want %q", got, data)
	}

	if _, found := c.Get("missing"); found {
		t.Error("Found non-existent key")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
	if stats.TotalSize != int64(len(data)) || stats.EntryCount != 1 {
		t.Errorf("size accounting = %+v", stats)
	}
}

func TestCache_Replace(t *testing.T) {
	c := newTestCache(t, 0)

	c.Put("client", []byte("first"))
	c.Put("client", []byte("second build"))

	got, _ := c.Get("client")
	if string(got) != "second build" {
		t.Errorf("got %q", got)
	}
	if s := c.GetStats(); s.EntryCount != 1 || s.TotalSize != int64(len("second build")) {
		t.Errorf("stats = %+v", s)
	}
	files, _ := os.ReadDir(filepath.Join(c.Dir(), "artifacts"))
	if len(files) != 1 {
		t.Errorf("artifact files = %d, old build not removed", len(files))
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, 0)

	c.Put("client", []byte("data"))
	if err := c.Delete("client"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found := c.Get("client"); found {
		t.Error("Data found after delete")
	}
	if err := c.Delete("client"); err != nil {
		t.Errorf("Delete of non-existent key failed: %v", err)
	}
}

func TestCache_EvictionLRU(t *testing.T) {
	c := newTestCache(t, 100)

	c.Put("key1", bytes.Repeat([]byte("a"), 40))
	time.Sleep(10 * time.Millisecond)
	c.Put("key2", bytes.Repeat([]byte("b"), 40))
	time.Sleep(10 * time.Millisecond)
	c.Get("key1")
	time.Sleep(10 * time.Millisecond)

	c.Put("key3", bytes.Repeat([]byte("c"), 40))

	tests := []struct {
		key  string
		want bool
	}{
		{"key1", true},
		{"key2", false},
		{"key3", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if _, found := c.Get(tt.key); found != tt.want {
				t.Errorf("found = %v, want %v", found, tt.want)
			}
		})
	}
	if s := c.GetStats(); s.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", s.Evictions)
	}
}

func TestCache_Dependencies(t *testing.T) {
	c := newTestCache(t, 0)

	c.PutWithDeps("client", []byte("a"), []string{"app/client/main.go", "pkg/zoom/surface.go"})
	c.PutWithDeps("other", []byte("b"), []string{"app/other/main.go"})

	if n := c.InvalidateByDependency("pkg/zoom"); n != 1 {
		t.Errorf("InvalidateByDependency(dir) = %d, want 1", n)
	}
	if _, found := c.Get("client"); found {
		t.Error("client survived invalidation of a dependency")
	}
	if n := c.InvalidateByDependency("app/oth"); n != 0 {
		t.Errorf("partial name matched %d entries", n)
	}
	if n := c.InvalidateByDependency("app/other/main.go"); n != 1 {
		t.Errorf("InvalidateByDependency(file) = %d, want 1", n)
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t, 0)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if s := c.GetStats(); s.EntryCount != 0 || s.TotalSize != 0 {
		t.Errorf("stats after clear = %+v", s)
	}
	if _, found := c.Get("a"); found {
		t.Error("entry survived Clear")
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()

	c1, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	c1.Put("client", []byte("persisted"))

	c2, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	got, found := c2.Get("client")
	if !found || string(got) != "persisted" {
		t.Errorf("reopened cache: %q, %v", got, found)
	}
	if s := c2.GetStats(); s.TotalSize != int64(len("persisted")) {
		t.Errorf("TotalSize after reload = %d", s.TotalSize)
	}
}

func TestCache_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("corrupt index should start empty, got %v", err)
	}
	if s := c.GetStats(); s.EntryCount != 0 {
		t.Errorf("entries = %d", s.EntryCount)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := newTestCache(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key("client", string(rune('a'+i)))
			c.Put(key, []byte(key))
			if got, ok := c.Get(key); !ok || string(got) != key {
				t.Errorf("concurrent get %d failed", i)
			}
		}(i)
	}
	wg.Wait()

	if s := c.GetStats(); s.EntryCount != 8 {
		t.Errorf("entries = %d, want 8", s.EntryCount)
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("input boundaries not part of the key")
	}
	if Key("x") != Key("x") {
		t.Error("Key is not deterministic")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	os.WriteFile(path, []byte("package main"), 0644)

	k1, err := KeyFromFiles(path)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, []byte("package main // edited"), 0644)
	k2, _ := KeyFromFiles(path)
	if k1 == k2 {
		t.Error("content change did not change the key")
	}

	if _, err := KeyFromFiles(filepath.Join(dir, "missing.go")); err == nil {
		t.Error("missing file should fail")
	}
}
