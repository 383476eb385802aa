package utils

import (
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("fresh", "value", time.Minute)
	c.Set("stale", "value", -time.Second)

	if got := c.Get("fresh"); got != "value" {
		t.Errorf("expected cached value, got %v", got)
	}
	if got := c.Get("stale"); got != nil {
		t.Errorf("expected expired entry to be dropped, got %v", got)
	}
	if c.lruCache.Contains("stale") {
		t.Error("expected expired entry removed on read")
	}
}

func TestCachePurge(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("index_page:u0:/", 1, time.Minute)
	c.Set("other:key", 3, time.Minute)

	c.Purge()
	if c.Get("index_page:u0:/") != nil || c.Get("other:key") != nil {
		t.Error("expected every key removed")
	}
	if n := c.lruCache.Len(); n != 0 {
		t.Errorf("expected empty cache after purge, len=%d", n)
	}
}
