package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCacheSet(t *testing.T) {
	c := New[string](0)
	c.Set("org.mpris.MediaPlayer2.cmus", ":1.42")

	val, exists := c.Get("org.mpris.MediaPlayer2.cmus")
	if !exists {
		t.Fatal("key should exist")
	}
	if val != ":1.42" {
		t.Fatalf("expected ':1.42', got '%s'", val)
	}
}

func TestCacheGetMissing(t *testing.T) {
	c := New[string](0)

	if _, exists := c.Get("missing"); exists {
		t.Fatal("missing key should not exist")
	}
}

func TestCacheTTL(t *testing.T) {
	c := New[string](50 * time.Millisecond)
	c.Set("key1", "value1")

	if _, exists := c.Get("key1"); !exists {
		t.Fatal("key1 should exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be expired after TTL")
	}
}

func TestCacheZeroTTL(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")

	time.Sleep(20 * time.Millisecond)

	if _, exists := c.Get("key1"); !exists {
		t.Fatal("key1 should never expire with TTL=0")
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[string](0)
	loads := 0
	load := func() (string, error) {
		loads++
		return ":1.7", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("name", load)
		if err != nil {
			t.Fatalf("GetOrLoad() error: %v", err)
		}
		if v != ":1.7" {
			t.Fatalf("GetOrLoad() = %q, want ':1.7'", v)
		}
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
}

func TestCacheGetOrLoad_ErrorNotStored(t *testing.T) {
	c := New[string](0)
	wantErr := errors.New("name has no owner")

	_, err := c.GetOrLoad("name", func() (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrLoad() error = %v, want %v", err, wantErr)
	}
	if _, exists := c.Get("name"); exists {
		t.Fatal("failed load should not populate the cache")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")

	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")
	c.Set("key2", "value2")

	c.Clear()

	_, exists1 := c.Get("key1")
	_, exists2 := c.Get("key2")
	if exists1 || exists2 {
		t.Fatal("all keys should be cleared")
	}
}

func TestCacheThreadSafety(t *testing.T) {
	c := New[int](0)
	done := make(chan bool, 10)

	for i := 0; i < 5; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				c.Set("key", id*100+j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 5; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_, _ = c.GetOrLoad("key", func() (int, error) { return 0, nil })
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
