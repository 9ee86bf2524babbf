package preview

import (
	"fmt"
	"testing"

	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func newCacheMat(t *testing.T, fill float32) *safe.Mat {
	t.Helper()

	m, err := safe.NewMat(4, 4, gocv.MatTypeCV32FC1)
	if err != nil {
		t.Fatalf("NewMat failed: %v", err)
	}
	data, err := m.Float32Data()
	if err != nil {
		t.Fatalf("Float32Data failed: %v", err)
	}
	for i := range data {
		data[i] = fill
	}
	return m
}

func firstValue(t *testing.T, m *safe.Mat) float32 {
	t.Helper()

	v, err := m.GetFloatAt(0, 0)
	if err != nil {
		t.Fatalf("GetFloatAt failed: %v", err)
	}
	return v
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(4)
	defer cache.Clear()

	mat := newCacheMat(t, 42)
	defer mat.Close()

	if _, ok := cache.Get("absent"); ok {
		t.Fatal("empty cache reported a hit")
	}

	if err := cache.Put("fp-1", mat); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := cache.Get("fp-1")
	if !ok {
		t.Fatal("stored entry not found")
	}
	defer got.Close()

	if v := firstValue(t, got); v != 42 {
		t.Errorf("cached value %g, expected 42", v)
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats hits=%d misses=%d, expected 1/1", hits, misses)
	}
}

func TestCacheEvictsOldestInsertionFirst(t *testing.T) {
	cache := NewCache(2)
	defer cache.Clear()

	for i := 0; i < 3; i++ {
		mat := newCacheMat(t, float32(i))
		if err := cache.Put(fmt.Sprintf("fp-%d", i), mat); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
		mat.Close()
	}

	if _, ok := cache.Get("fp-0"); ok {
		t.Error("oldest entry survived eviction")
	}
	for _, fp := range []string{"fp-1", "fp-2"} {
		got, ok := cache.Get(fp)
		if !ok {
			t.Errorf("entry %s evicted out of order", fp)
			continue
		}
		got.Close()
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d entries, expected 2", cache.Len())
	}
}

func TestCacheRePutKeepsEvictionPosition(t *testing.T) {
	cache := NewCache(2)
	defer cache.Clear()

	first := newCacheMat(t, 1)
	second := newCacheMat(t, 2)
	refreshed := newCacheMat(t, 10)
	third := newCacheMat(t, 3)
	defer first.Close()
	defer second.Close()
	defer refreshed.Close()
	defer third.Close()

	if err := cache.Put("fp-a", first); err != nil {
		t.Fatalf("Put fp-a failed: %v", err)
	}
	if err := cache.Put("fp-b", second); err != nil {
		t.Fatalf("Put fp-b failed: %v", err)
	}
	// Overwrites fp-a but must not refresh its slot in the queue.
	if err := cache.Put("fp-a", refreshed); err != nil {
		t.Fatalf("re-Put fp-a failed: %v", err)
	}
	if err := cache.Put("fp-c", third); err != nil {
		t.Fatalf("Put fp-c failed: %v", err)
	}

	if _, ok := cache.Get("fp-a"); ok {
		t.Error("re-put entry escaped FIFO eviction")
	}
	got, ok := cache.Get("fp-b")
	if !ok {
		t.Fatal("fp-b evicted although it was newer than fp-a")
	}
	got.Close()
}

func TestCacheReturnsIsolatedCopies(t *testing.T) {
	cache := NewCache(4)
	defer cache.Clear()

	original := newCacheMat(t, 5)
	if err := cache.Put("fp", original); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the source after Put must not reach the cache.
	if err := original.SetFloatAt(0, 0, 99); err != nil {
		t.Fatalf("SetFloatAt failed: %v", err)
	}
	original.Close()

	first, ok := cache.Get("fp")
	if !ok {
		t.Fatal("entry not found")
	}
	if v := firstValue(t, first); v != 5 {
		t.Errorf("cache absorbed caller mutation, value %g", v)
	}

	// Mutating a returned copy must not reach later readers.
	if err := first.SetFloatAt(0, 0, 77); err != nil {
		t.Fatalf("SetFloatAt failed: %v", err)
	}
	first.Close()

	second, ok := cache.Get("fp")
	if !ok {
		t.Fatal("entry not found on second read")
	}
	defer second.Close()
	if v := firstValue(t, second); v != 5 {
		t.Errorf("cache leaked a shared Mat, value %g", v)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(4)

	mat := newCacheMat(t, 1)
	defer mat.Close()
	if err := cache.Put("fp", mat); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after Clear", cache.Len())
	}
	if _, ok := cache.Get("fp"); ok {
		t.Error("entry survived Clear")
	}
}
