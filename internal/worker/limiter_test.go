package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 1)
	if l3.defaultRate != rate.Inf {
		t.Errorf("expected unlimited rate for 0 rps, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://www.reddit.com/search.json?q=rizz"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://openrouter.ai/api/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	url := "https://www.reddit.com/search.json"
	if !limiter.Allow(url) {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected wait to fail once the context expires")
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "https://www.reddit.com/search.json"

	if err := limiter.Wait(context.Background(), url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}
	if limiter.Allow(url) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}
	if !limiter.Allow("https://old.reddit.com/search.json") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	host := "slow.example"

	limiter.SetHostRate(host, 0.1, 1)

	if !limiter.Allow("http://" + host) {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("http://" + host) {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("http://fast.example") {
		t.Errorf("other host should pass")
	}
}

func TestLimiter_Slow(t *testing.T) {
	limiter := NewLimiter(100, 5)
	url := "https://www.reddit.com/search.json"

	if err := limiter.Slow(url, 10*time.Second); err != nil {
		t.Fatalf("Slow failed: %v", err)
	}
	if !limiter.Allow(url) {
		t.Errorf("first request after slow should pass")
	}
	if limiter.Allow(url) {
		t.Errorf("second request should wait for the crawl delay")
	}

	// never speeds a host up
	limiter.SetHostRate("slower.example", 0.01, 1)
	if err := limiter.Slow("http://slower.example", time.Second); err != nil {
		t.Fatalf("Slow failed: %v", err)
	}
	if got := limiter.get("slower.example").Limit(); got != rate.Limit(0.01) {
		t.Errorf("expected rate to stay 0.01, got %v", got)
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://example.com/foo")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
	if _, err := hostOf("/relative/path"); err == nil {
		t.Errorf("expected error for URL without host")
	}
}
