package cache

import (
	"testing"
	"time"

	"finreport/internal/log"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCacheWithClock[int](10, 5*time.Minute, clock.Now)

	c.Set("k", 1)

	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{"immediately", 0, true},
		{"just before ttl", 4*time.Minute + 59*time.Second, true},
		{"exactly at ttl", time.Second, true},
		{"past ttl", time.Nanosecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			_, ok := c.Get("k")
			if ok != tt.wantHit {
				t.Errorf("Get() hit = %v, want %v", ok, tt.wantHit)
			}
		})
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size = %d", c.Size())
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[string](2, time.Hour)
	c.Set("a", "A")
	c.Set("b", "B")
	c.Get("a") // a becomes most recently used
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheReplaceAndDelete(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCacheWithClock[[]string](1, time.Minute, clock.Now)

	c.Set("bills", []string{"old"})
	clock.Advance(30 * time.Second)
	c.Set("bills", []string{"new"})

	got, ok := c.Get("bills")
	if !ok || len(got) != 1 || got[0] != "new" {
		t.Fatalf("expected replaced value, got %v (ok=%v)", got, ok)
	}
	storedAt, ok := c.StoredAt("bills")
	if !ok || !storedAt.Equal(clock.Now()) {
		t.Errorf("StoredAt() = %v, want %v", storedAt, clock.Now())
	}

	c.Delete("bills")
	if _, ok := c.Get("bills"); ok {
		t.Error("expected value to be deleted")
	}
}

func TestManagerCleanAll(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCacheWithClock[int](10, time.Minute, clock.Now)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(2 * time.Minute)
	c.Set("c", 3)

	m := NewManager(log.Discard())
	m.Register(c)

	if cleaned := m.CleanAll(); cleaned != 2 {
		t.Errorf("CleanAll() = %d, want 2", cleaned)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(log.Discard())
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	m.Stop()
	m.Stop() // second stop is a no-op
}
