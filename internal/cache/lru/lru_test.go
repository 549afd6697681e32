package lru

import (
	"fmt"
	"testing"
	"time"
)

func TestInsertBeyondCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	cache := New[string, int](3, time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	// Touch "a" so "b" becomes the least recently used entry.
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	cache.Set("d", 4)

	if _, ok := cache.Get("b"); ok {
		t.Fatal("expected b to be evicted as least recently used")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := cache.Get(key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}
	if cache.Len() != 3 {
		t.Fatalf("expected len 3, got %d", cache.Len())
	}
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	cache := New[string, int](2, time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("a", 10)

	if value, ok := cache.Get("a"); !ok || value != 10 {
		t.Fatalf("expected updated value 10, got %d (hit=%v)", value, ok)
	}
	if _, ok := cache.Get("b"); !ok {
		t.Fatal("expected b to remain cached")
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	cache := New[string, int](2, time.Minute)

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("a", 1)
	current = current.Add(2 * time.Minute)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped, len %d", cache.Len())
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	cache := New[string, int](2, time.Minute)
	cache.Set("a", 1)
	cache.Delete("a")

	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected deleted key to miss")
	}
}

func TestEvictionOrderAcrossManyKeys(t *testing.T) {
	const capacity = 8
	cache := New[string, int](capacity, time.Minute)

	for i := 0; i < capacity+1; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), i)
	}

	if _, ok := cache.Get("key-0"); ok {
		t.Fatal("expected key-0 to be evicted")
	}
	if cache.Len() != capacity {
		t.Fatalf("expected len %d, got %d", capacity, cache.Len())
	}
}
