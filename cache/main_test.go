package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	store, err := NewMemory[string](4)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected miss on empty store")
	}
	store.Set("a", "1", time.Minute)
	got, ok := store.Get("a")
	if !ok || got != "1" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	store.Delete("a")
	if _, ok := store.Get("a"); ok {
		t.Fatal("expected miss after Delete")
	}
}

func TestMemoryExpiry(t *testing.T) {
	store, err := NewMemory[int](4)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("short", 1, time.Second)
	store.Set("forever", 2, 0)

	now = now.Add(2 * time.Second)
	if _, ok := store.Get("short"); ok {
		t.Error("expired entry was returned")
	}
	if got, ok := store.Get("forever"); !ok || got != 2 {
		t.Errorf("Get(forever) = %d, %v", got, ok)
	}
	if store.Len() != 1 {
		t.Errorf("expired entry not dropped, len %d", store.Len())
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	store, err := NewMemory[int](2)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	store.Set("a", 1, time.Minute)
	store.Set("b", 2, time.Minute)
	store.Get("a")
	store.Set("c", 3, time.Minute)

	if _, ok := store.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := store.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
	store.Clear()
	if store.Len() != 0 {
		t.Errorf("Clear left %d entries", store.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store, err := NewMemory[int](16)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i+j)%20)
				store.Set(key, j, time.Minute)
				store.Get(key)
			}
		}()
	}
	wg.Wait()
	if store.Len() > 16 {
		t.Errorf("capacity exceeded: %d", store.Len())
	}
}

func TestNewMemoryRejectsZeroCapacity(t *testing.T) {
	if _, err := NewMemory[int](0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}
