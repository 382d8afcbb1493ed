package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, remaining, resetTime := bucket.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if !resetTime.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)
	for i := 0; i < 10; i++ {
		bucket.take()
	}

	time.Sleep(1100 * time.Millisecond)

	if allowed, _, _ := bucket.take(); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}

	// Another client has its own bucket
	if allowed, _ := limiter.Allow("10.0.0.2", "/jobs", "GET"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/jobs", "GET"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET"); allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/jobs/magic-scrape", "POST")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed when disabled", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", info.Limit)
		}
	}
}

func TestLimiter_MagicScrapeTier(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(20, time.Hour),
	})
	defer limiter.Stop()

	// Burst is a tenth of the hourly limit
	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/jobs/magic-scrape", "POST")
		if !allowed {
			t.Errorf("Expected scrape %d to be allowed", i+1)
		}
		if info.Tier != "magic-scrape" || info.Limit != 20 {
			t.Errorf("Expected magic-scrape tier with limit 20, got %s/%d", info.Tier, info.Limit)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/jobs/magic-scrape", "POST"); allowed {
		t.Error("Expected third scrape to be denied")
	}

	// Other endpoints are unaffected
	if allowed, info := limiter.Allow("127.0.0.1", "/jobs", "POST"); !allowed || info.Tier != "writes" {
		t.Errorf("Expected manual create in writes tier to be allowed, got %v/%s", allowed, info.Tier)
	}
	if allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET"); !allowed || info.Limit != 1000 {
		t.Errorf("Expected read to use default limit, got %v/%d", allowed, info.Limit)
	}
}

func TestLimiter_TierSharesBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Name: "writes", Path: "/jobs/", Method: "PUT", Limit: 2, Window: time.Hour, Burst: 2},
			{Name: "writes", Path: "/jobs/", Method: "DELETE", Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	defer limiter.Stop()

	limiter.Allow("127.0.0.1", "/jobs/a", "PUT")
	limiter.Allow("127.0.0.1", "/jobs/b", "DELETE")
	if allowed, _ := limiter.Allow("127.0.0.1", "/jobs/c", "PUT"); allowed {
		t.Error("Expected the shared writes bucket to be exhausted")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/jobs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/jobs", "GET")
	}
	if n := limiter.bucketCount(); n != 10 {
		t.Fatalf("Expected 10 buckets, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(-time.Minute))
	if n := limiter.bucketCount(); n != 10 {
		t.Errorf("Expected recent buckets to survive, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(time.Second))
	if n := limiter.bucketCount(); n != 0 {
		t.Errorf("Expected stale buckets to be removed, got %d", n)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(30, time.Hour)

	tests := []struct {
		method, path string
		want         string
	}{
		{"POST", "/jobs/magic-scrape", "magic-scrape"},
		{"POST", "/auth/login", "auth"},
		{"POST", "/jobs", "writes"},
		{"PUT", "/jobs/123", "writes"},
		{"PATCH", "/jobs/123/status", "writes"},
		{"DELETE", "/companies/9", "writes"},
		{"GET", "/health", "unlimited"},
		{"GET", "/jobs", ""},
		{"PATCH", "/jobs/123", ""},
	}

	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		name := ""
		if got != nil {
			name = got.Name
		}
		if name != tt.want {
			t.Errorf("MatchEndpoint(%s %s) = %q, want %q", tt.method, tt.path, name, tt.want)
		}
	}
}
