package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"
)

func testConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:       true,
		MaxSize:       10,
		StaleTime:     time.Minute,
		GCTime:        5 * time.Minute,
		Retry:         3,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 4 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, cfg config.CacheConfig) *Client {
	t.Helper()
	c := NewClient(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func counting(calls *int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestKey_HasPrefix(t *testing.T) {
	tests := []struct {
		key    Key
		prefix Key
		want   bool
	}{
		{Key{"recipes", "all"}, Key{"recipes"}, true},
		{Key{"recipes"}, Key{"recipes"}, true},
		{Key{"meal-plan", "2024-01-01", "2024-01-07"}, Key{"meal-plan"}, true},
		{Key{"recipes"}, Key{"recipes", "all"}, false},
		{Key{"pantry"}, Key{"recipes"}, false},
		{Key{"public-recipe", "x"}, Key{"public"}, false},
	}
	for _, tt := range tests {
		if got := tt.key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%v.HasPrefix(%v) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestKey_StringNoCollision(t *testing.T) {
	a := Key{"recipes", "a,b"}
	b := Key{"recipes", "a", "b"}
	if a.String() == b.String() {
		t.Errorf("expected distinct keys, both %s", a.String())
	}
}

func TestFetch_CachesFreshResult(t *testing.T) {
	c := newTestClient(t, testConfig())
	var calls int32
	q := Query[string]{Key: Key{"pantry"}, Fn: counting(&calls, "v1")}

	for i := 0; i < 3; i++ {
		v, err := Fetch(context.Background(), c, q)
		if err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
		if v != "v1" {
			t.Errorf("expected v1, got %s", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 backend call, got %d", calls)
	}
}

func TestFetch_StaleAfterStaleTime(t *testing.T) {
	c := newTestClient(t, testConfig())
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int32
	q := Query[string]{Key: Key{"pantry"}, Fn: counting(&calls, "v")}

	_, _ = Fetch(context.Background(), c, q)
	now = now.Add(2 * time.Minute)
	_, _ = Fetch(context.Background(), c, q)

	if calls != 2 {
		t.Errorf("expected refetch after stale time, got %d calls", calls)
	}
}

func TestInvalidate_PrefixFamily(t *testing.T) {
	c := newTestClient(t, testConfig())
	ctx := context.Background()

	var recipeCalls, pantryCalls int32
	all := Query[string]{Key: Key{"recipes", "all"}, Fn: counting(&recipeCalls, "all")}
	filtered := Query[string]{Key: Key{"recipes", "ingredient=egg"}, Fn: counting(&recipeCalls, "egg")}
	pantry := Query[string]{Key: Key{"pantry"}, Fn: counting(&pantryCalls, "p")}

	for _, q := range []Query[string]{all, filtered, pantry} {
		if _, err := Fetch(ctx, c, q); err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
	}

	if n := c.Invalidate(Key{"recipes"}); n != 2 {
		t.Errorf("expected 2 invalidated entries, got %d", n)
	}
	if c.IsFresh(all.Key) || c.IsFresh(filtered.Key) {
		t.Error("recipes family should be stale after invalidation")
	}
	if !c.IsFresh(pantry.Key) {
		t.Error("pantry should stay fresh")
	}

	_, _ = Fetch(ctx, c, all)
	_, _ = Fetch(ctx, c, filtered)
	_, _ = Fetch(ctx, c, pantry)
	if recipeCalls != 4 {
		t.Errorf("expected recipes refetched, got %d calls", recipeCalls)
	}
	if pantryCalls != 1 {
		t.Errorf("expected pantry served from cache, got %d calls", pantryCalls)
	}
}

func TestInvalidate_DuringFetchStoresStale(t *testing.T) {
	c := newTestClient(t, testConfig())
	key := Key{"recipes", "all"}

	q := Query[string]{Key: key, Fn: func(context.Context) (string, error) {
		c.Invalidate(Key{"recipes"})
		return "old", nil
	}}
	if _, err := Fetch(context.Background(), c, q); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if c.IsFresh(key) {
		t.Error("result fetched across an invalidation must not be fresh")
	}
}

func TestFetch_Disabled(t *testing.T) {
	c := newTestClient(t, testConfig())
	var calls int32
	q := Query[string]{Key: Key{"public-recipe", ""}, Fn: counting(&calls, "x"), Disabled: true}

	_, err := Fetch(context.Background(), c, q)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("disabled query must not call fetch, got %d", calls)
	}
}

func TestFetch_Retry(t *testing.T) {
	c := newTestClient(t, testConfig())
	boom := errors.New("boom")

	t.Run("succeeds after failures", func(t *testing.T) {
		var calls int32
		q := Query[string]{Key: Key{"flaky"}, Fn: func(context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return "", boom
			}
			return "ok", nil
		}}
		v, err := Fetch(context.Background(), c, q)
		if err != nil || v != "ok" {
			t.Fatalf("expected ok, got %q, %v", v, err)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
	})

	t.Run("gives up after retry budget", func(t *testing.T) {
		var calls int32
		q := Query[string]{Key: Key{"broken"}, Fn: func(context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", boom
		}}
		_, err := Fetch(context.Background(), c, q)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if calls != 4 {
			t.Errorf("expected 1 + 3 retries, got %d", calls)
		}
	})

	t.Run("no retry", func(t *testing.T) {
		var calls int32
		q := Query[string]{Key: Key{"once"}, NoRetry: true, Fn: func(context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", boom
		}}
		_, _ = Fetch(context.Background(), c, q)
		if calls != 1 {
			t.Errorf("expected single attempt, got %d", calls)
		}
	})

	t.Run("validation errors are not retried", func(t *testing.T) {
		var calls int32
		q := Query[string]{Key: Key{"invalid"}, Fn: func(context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", common.NewValidationError("bad input")
		}}
		_, _ = Fetch(context.Background(), c, q)
		if calls != 1 {
			t.Errorf("expected single attempt, got %d", calls)
		}
	})
}

func TestRetryDelay_Capped(t *testing.T) {
	c := &Client{config: config.CacheConfig{RetryDelay: time.Second, MaxRetryDelay: 30 * time.Second}}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second, 30 * time.Second}
	for n, w := range want {
		if got := c.retryDelay(n); got != w {
			t.Errorf("retryDelay(%d) = %v, want %v", n, got, w)
		}
	}
}

func TestFetch_DeduplicatesConcurrent(t *testing.T) {
	c := newTestClient(t, testConfig())
	var calls int32
	release := make(chan struct{})
	q := Query[string]{Key: Key{"pantry"}, Fn: func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Fetch(context.Background(), c, q); err != nil {
				t.Errorf("Fetch returned error: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected a single in-flight fetch, got %d", calls)
	}
}

func TestFetch_AfterInvalidateSkipsOlderFlight(t *testing.T) {
	c := newTestClient(t, testConfig())
	key := Key{"recipes", "all"}

	var mu sync.Mutex
	value := "before-save"
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	q := Query[string]{Key: key, Fn: func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			mu.Lock()
			v := value
			mu.Unlock()
			close(started)
			<-release
			return v, nil
		}
		mu.Lock()
		defer mu.Unlock()
		return value, nil
	}}

	first := make(chan string, 1)
	go func() {
		v, _ := Fetch(context.Background(), c, q)
		first <- v
	}()
	<-started

	mu.Lock()
	value = "after-save"
	mu.Unlock()
	c.Invalidate(Key{"recipes"})

	v, err := Fetch(context.Background(), c, q)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if v != "after-save" {
		t.Errorf("fetch issued after invalidation returned %q", v)
	}

	close(release)
	if old := <-first; old != "before-save" {
		t.Errorf("expected the older fetch to finish with its own value, got %q", old)
	}
	// 舊 flight 於失效後寫入，只會留下過期條目
	if got, _ := Fetch(context.Background(), c, q); got != "after-save" {
		t.Errorf("expected later fetch to see the new value, got %q", got)
	}
}

func TestFetch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := newTestClient(t, testConfig())
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	q := Query[string]{Key: Key{"pantry"}, Fn: func(ctx context.Context) (string, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return "v", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, q)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, err := Fetch(context.Background(), c, q)
		if err != nil {
			t.Errorf("waiting caller returned error: %v", err)
		}
		second <- v
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancelled caller to get context.Canceled, got %v", err)
	}

	close(release)
	if v := <-second; v != "v" {
		t.Errorf("expected waiting caller to receive v, got %q", v)
	}
}

func TestRemove_DropsPrefixOnly(t *testing.T) {
	c := newTestClient(t, testConfig())
	ctx := context.Background()
	var calls int32
	mine := Query[string]{Key: Key{"session:a", "pantry"}, Fn: counting(&calls, "a")}
	theirs := Query[string]{Key: Key{"session:b", "pantry"}, Fn: counting(&calls, "b")}

	_, _ = Fetch(ctx, c, mine)
	_, _ = Fetch(ctx, c, theirs)

	if n := c.Remove(Key{"session:a"}); n != 1 {
		t.Errorf("expected 1 removed entry, got %d", n)
	}
	if c.IsFresh(mine.Key) {
		t.Error("expected removed entry to be gone")
	}
	if !c.IsFresh(theirs.Key) {
		t.Error("expected other session entry to remain")
	}
	if size := c.GetStats()["size"].(int); size != 1 {
		t.Errorf("expected size 1, got %d", size)
	}
}

func TestMaxSizeEvictsLRU(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSize = 2
	c := newTestClient(t, cfg)
	ctx := context.Background()

	var calls int32
	a := Query[string]{Key: Key{"a"}, Fn: counting(&calls, "a")}
	b := Query[string]{Key: Key{"b"}, Fn: counting(&calls, "b")}
	d := Query[string]{Key: Key{"d"}, Fn: counting(&calls, "d")}

	_, _ = Fetch(ctx, c, a)
	_, _ = Fetch(ctx, c, b)
	_, _ = Fetch(ctx, c, a) // a 被存取過，b 應先被淘汰
	_, _ = Fetch(ctx, c, d)

	if c.IsFresh(b.Key) {
		t.Error("expected b to be evicted")
	}
	if !c.IsFresh(a.Key) || !c.IsFresh(d.Key) {
		t.Error("expected a and d to remain cached")
	}
	if size := c.GetStats()["size"].(int); size != 2 {
		t.Errorf("expected size 2, got %d", size)
	}
}

func TestCacheDisabled_AlwaysFetches(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := newTestClient(t, cfg)

	var calls int32
	q := Query[string]{Key: Key{"pantry"}, Fn: counting(&calls, "v")}
	_, _ = Fetch(context.Background(), c, q)
	_, _ = Fetch(context.Background(), c, q)
	if calls != 2 {
		t.Errorf("expected 2 calls with cache disabled, got %d", calls)
	}
}

func TestClear(t *testing.T) {
	c := newTestClient(t, testConfig())
	var calls int32
	q := Query[string]{Key: Key{"pantry"}, Fn: counting(&calls, "v")}

	_, _ = Fetch(context.Background(), c, q)
	c.Clear()
	if c.IsFresh(q.Key) {
		t.Error("expected empty cache after Clear")
	}
	_, _ = Fetch(context.Background(), c, q)
	if calls != 2 {
		t.Errorf("expected refetch after Clear, got %d calls", calls)
	}
}

func TestMutation_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var succeeded string
		m := Mutation[string, int]{
			Fn:        func(_ context.Context, v string) (int, error) { return len(v), nil },
			OnSuccess: func(_ context.Context, r int, v string) { succeeded = v },
			OnError:   func(context.Context, error, string) { t.Error("OnError should not be called") },
		}
		r, err := m.Run(ctx, "abc")
		if err != nil || r != 3 {
			t.Fatalf("expected 3, got %d, %v", r, err)
		}
		if succeeded != "abc" {
			t.Errorf("OnSuccess not called with input, got %q", succeeded)
		}
	})

	t.Run("validation failure skips fn", func(t *testing.T) {
		called := false
		var gotErr error
		m := Mutation[string, int]{
			Validate: func(v string) error { return common.NewValidationError("empty") },
			Fn:       func(context.Context, string) (int, error) { called = true; return 0, nil },
			OnError:  func(_ context.Context, err error, _ string) { gotErr = err },
		}
		if _, err := m.Run(ctx, ""); !common.IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if called {
			t.Error("Fn must not run when validation fails")
		}
		if gotErr == nil {
			t.Error("OnError should receive the validation error")
		}
	})

	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		var gotErr error
		m := Mutation[string, int]{
			Fn:      func(context.Context, string) (int, error) { return 0, boom },
			OnError: func(_ context.Context, err error, _ string) { gotErr = err },
		}
		if _, err := m.Run(ctx, "x"); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if !errors.Is(gotErr, boom) {
			t.Errorf("OnError got %v", gotErr)
		}
	})
}
