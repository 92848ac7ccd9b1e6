package registers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/config"
)

func TestResolveExistingChunksLookups(t *testing.T) {
	total := config.LookupChunkSize*2 + 500
	codes := make([]string, 0, total)
	for i := 0; i < total; i++ {
		codes = append(codes, fmt.Sprintf("C%05d", i))
	}

	var calls int
	find := func(ctx context.Context, chunk []string) ([]fakeRow, error) {
		calls++
		if len(chunk) > config.LookupChunkSize {
			return nil, fmt.Errorf("chunk of %d exceeds the lookup limit", len(chunk))
		}
		rows := make([]fakeRow, 0, len(chunk))
		for _, code := range chunk {
			rows = append(rows, fakeRow{code: code})
		}
		return rows, nil
	}

	existing, err := resolveExisting(context.Background(), codes, find)
	if err != nil {
		t.Fatalf("resolveExisting failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(existing) != total {
		t.Fatalf("resolved %d rows, want %d", len(existing), total)
	}
	if _, ok := existing["C00000"]; !ok {
		t.Fatal("first code missing from the resolved map")
	}
}

func TestResolveExistingDeduplicatesCodes(t *testing.T) {
	var seen [][]string
	find := func(ctx context.Context, chunk []string) ([]fakeRow, error) {
		seen = append(seen, chunk)
		return nil, nil
	}

	_, err := resolveExisting(context.Background(), []string{"A1", "B2", "A1", "a1", "B2"}, find)
	if err != nil {
		t.Fatalf("resolveExisting failed: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected a single lookup, got %d", len(seen))
	}
	// Codes are deduplicated verbatim; case folding is the parsers' job.
	if got, want := len(seen[0]), 3; got != want {
		t.Fatalf("lookup codes = %v, want %d unique codes", seen[0], want)
	}
}

func TestResolveExistingEmptyInput(t *testing.T) {
	find := func(ctx context.Context, chunk []string) ([]fakeRow, error) {
		t.Fatal("no lookup expected for an empty upload")
		return nil, nil
	}
	existing, err := resolveExisting(context.Background(), nil, find)
	if err != nil {
		t.Fatalf("resolveExisting failed: %v", err)
	}
	if len(existing) != 0 {
		t.Fatalf("existing = %v, want empty", existing)
	}
}

func TestResolveExistingPropagatesErrors(t *testing.T) {
	boom := errors.New("timeout")
	find := func(ctx context.Context, chunk []string) ([]fakeRow, error) {
		return nil, boom
	}
	_, err := resolveExisting(context.Background(), []string{"A1"}, find)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
