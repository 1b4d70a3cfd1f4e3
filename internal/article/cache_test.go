// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package article

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// blockingFetcher parks every fetch on release so tests can pile up
// concurrent callers before letting one request complete.
type blockingFetcher struct {
	release chan struct{}
	html    string
	err     error
	calls   atomic.Int32
	started chan struct{}
}

func (f *blockingFetcher) Article(ctx context.Context, _ string, _ bool) (string, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.html, f.err
}

func TestGetCachesAcrossCalls(t *testing.T) {
	fetcher := &blockingFetcher{html: "<p>body</p>"}
	cache := NewCache(fetcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		html, err := cache.Get(ctx, "t1", false)
		if err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
		if html != "<p>body</p>" {
			t.Fatalf("Get #%d = %q", i, html)
		}
	}
	if n := fetcher.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	fetcher := &blockingFetcher{
		html:    "<p>shared</p>",
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	cache := NewCache(fetcher)
	ctx := context.Background()

	const callers = 5
	results := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = cache.Get(ctx, "t1", false)
	}()
	<-fetcher.started

	// The fetch is in flight; everyone else must join it.
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(ctx, "t1", false)
		}(i)
	}
	// Give the late callers a moment to reach the in-flight branch.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != "<p>shared</p>" {
			t.Errorf("caller %d got %q", i, results[i])
		}
	}
	if n := fetcher.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want exactly 1", n)
	}
}

func TestFailedRefreshKeepsPriorEntry(t *testing.T) {
	fetcher := &blockingFetcher{html: "<p>v1</p>"}
	cache := NewCache(fetcher)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "t1", false); err != nil {
		t.Fatalf("initial Get: %v", err)
	}

	fetcher.err = errors.New("regeneration failed")
	if _, err := cache.Get(ctx, "t1", true); err == nil {
		t.Fatal("forced refresh succeeded, want error")
	}

	// The stale-but-valid entry survives, and a plain Get serves it
	// without another fetch.
	fetcher.err = nil
	before := fetcher.calls.Load()
	html, err := cache.Get(ctx, "t1", false)
	if err != nil {
		t.Fatalf("Get after failed refresh: %v", err)
	}
	if html != "<p>v1</p>" {
		t.Errorf("Get = %q, want the prior entry", html)
	}
	if n := fetcher.calls.Load(); n != before {
		t.Errorf("fetch calls = %d, want %d", n, before)
	}
}

func TestForcedRefreshReplacesEntry(t *testing.T) {
	fetcher := &blockingFetcher{html: "<p>v1</p>"}
	cache := NewCache(fetcher)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "t1", false); err != nil {
		t.Fatalf("initial Get: %v", err)
	}
	fetcher.html = "<p>v2</p>"

	html, err := cache.Get(ctx, "t1", true)
	if err != nil {
		t.Fatalf("forced Get: %v", err)
	}
	if html != "<p>v2</p>" {
		t.Errorf("forced Get = %q, want v2", html)
	}
	if got, _ := cache.Peek("t1"); got != "<p>v2</p>" {
		t.Errorf("Peek = %q, want v2", got)
	}
}

func TestGetHonorsContextWhileJoined(t *testing.T) {
	fetcher := &blockingFetcher{
		html:    "<p>slow</p>",
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	cache := NewCache(fetcher)

	go cache.Get(context.Background(), "t1", false)
	<-fetcher.started

	ctx, cancel := context.WithCancel(context.Background())
	joined := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "t1", false)
		joined <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-joined:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("joined caller error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("joined caller did not unblock on cancel")
	}
	close(fetcher.release)
}

func TestSeed(t *testing.T) {
	fetcher := &blockingFetcher{html: "<p>fetched</p>"}
	cache := NewCache(fetcher)

	cache.Seed("t1", "<p>embedded</p>")
	cache.Seed("t1", "<p>later</p>")
	cache.Seed("t2", "")

	if got, ok := cache.Peek("t1"); !ok || got != "<p>embedded</p>" {
		t.Errorf("Peek t1 = %q, %v; want the first seed kept", got, ok)
	}
	if _, ok := cache.Peek("t2"); ok {
		t.Error("empty seed must not create an entry")
	}

	html, err := cache.Get(context.Background(), "t1", false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if html != "<p>embedded</p>" {
		t.Errorf("Get = %q, want seeded entry without a fetch", html)
	}
	if n := fetcher.calls.Load(); n != 0 {
		t.Errorf("fetch calls = %d, want 0", n)
	}
}
