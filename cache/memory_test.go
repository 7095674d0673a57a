package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Hour)

	if err := c.Set("hash:sv", "Hej"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("hash:sv")
	if !ok || val != "Hej" {
		t.Errorf("expected hit with Hej, got %q, %v", val, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for an absent key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	c.Set("k", "v")

	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCache_NoTTL(t *testing.T) {
	c := NewMemoryCache(0)
	c.Set("k", "v")

	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Error("zero TTL entries must not expire")
	}
}

func TestMemoryCache_Flush(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Flush, got %d", c.Len())
	}
}

func TestMemoryCache_EntriesSkipsExpired(t *testing.T) {
	c := NewMemoryCache(15 * time.Millisecond)
	c.Set("old", "1")
	time.Sleep(25 * time.Millisecond)
	c.Set("new", "2")

	entries := c.Entries()
	if _, ok := entries["old"]; ok {
		t.Error("expired entry leaked into Entries")
	}
	if entries["new"] != "2" {
		t.Errorf("unexpected entries: %v", entries)
	}
}
