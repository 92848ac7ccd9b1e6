package registers

import (
	"context"
	"errors"
	"testing"
)

func TestLookupCacheMemoizesHits(t *testing.T) {
	var calls int
	cache := newLookupCache(func(ctx context.Context, key string) (*fakeRow, error) {
		calls++
		return &fakeRow{code: key}, nil
	})

	for i := 0; i < 3; i++ {
		row, err := cache.Get(context.Background(), "R1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if row == nil || row.code != "R1" {
			t.Fatalf("row = %v", row)
		}
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestLookupCacheMemoizesMisses(t *testing.T) {
	var calls int
	cache := newLookupCache(func(ctx context.Context, key string) (*fakeRow, error) {
		calls++
		return nil, nil
	})

	for i := 0; i < 3; i++ {
		row, err := cache.Get(context.Background(), "missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if row != nil {
			t.Fatalf("row = %v, want nil", row)
		}
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestLookupCacheDoesNotMemoizeErrors(t *testing.T) {
	boom := errors.New("timeout")
	var calls int
	cache := newLookupCache(func(ctx context.Context, key string) (*fakeRow, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &fakeRow{code: key}, nil
	})

	if _, err := cache.Get(context.Background(), "R1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	row, err := cache.Get(context.Background(), "R1")
	if err != nil || row == nil {
		t.Fatalf("retry failed: row=%v err=%v", row, err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
