package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New(true)
	etag := c.Set("ladder:AFL:AFLM:2024:1", []byte(`{"0":{"team":"Sydney"}}`), time.Minute)

	data, got, ok := c.Get("ladder:AFL:AFLM:2024:1")
	assert.True(t, ok)
	assert.Equal(t, etag, got)
	assert.JSONEq(t, `{"0":{"team":"Sydney"}}`, string(data))

	_, _, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), time.Minute)
	now = now.Add(2 * time.Minute)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats()["expired_keys"])

	c.evict()
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	assert.Equal(t, ComputeETag([]byte("v")), etag)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
}

func TestComputeETagIsWeakAndStable(t *testing.T) {
	a := ComputeETag([]byte("same"))
	assert.Equal(t, a, ComputeETag([]byte("same")))
	assert.NotEqual(t, a, ComputeETag([]byte("different")))
	assert.Regexp(t, `^W/"[0-9a-f]{16}"$`, a)
}

func TestCheckETagMatch(t *testing.T) {
	etag := `W/"abc"`
	assert.False(t, CheckETagMatch("", etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch(`W/"zzz", W/"abc"`, etag))
	assert.False(t, CheckETagMatch(`W/"zzz"`, etag))
}

func TestTTLForSeason(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, TTLCurrentSeason, TTLForSeason(2024, now))
	assert.Equal(t, TTLCurrentSeason, TTLForSeason(2025, now))
	assert.Equal(t, TTLHistorical, TTLForSeason(2019, now))
}
