package utils

import "testing"

func TestChunkSlice(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}

	chunks := ChunkSlice(input, 2)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %v, want 3", chunks)
	}
	if len(chunks[0]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("chunks = %v", chunks)
	}
	if chunks[2][0] != 5 {
		t.Fatalf("last chunk = %v", chunks[2])
	}

	if got := ChunkSlice([]int{}, 2); got != nil {
		t.Fatalf("empty input must yield no chunks, got %v", got)
	}
	if got := ChunkSlice(input, 0); got != nil {
		t.Fatalf("zero size must yield no chunks, got %v", got)
	}
	if got := ChunkSlice(input, 10); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("oversized chunk = %v", got)
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (order must be preserved)", got, want)
		}
	}
}

func TestPtrHelpers(t *testing.T) {
	if p := Ptr(42); p == nil || *p != 42 {
		t.Fatalf("Ptr = %v", p)
	}
	if DereferencePtr[int](nil) != 0 {
		t.Fatal("nil pointer must dereference to the zero value")
	}
	if DereferencePtr[int](nil, 9) != 9 {
		t.Fatal("nil pointer must dereference to the default")
	}
	if DereferencePtr(Ptr(3), 9) != 3 {
		t.Fatal("set pointer must dereference to its value")
	}
}

func TestGenerateUniqueFilename(t *testing.T) {
	a := GenerateUniqueFilename()
	b := GenerateUniqueFilename()
	if a == "" || a == b {
		t.Fatalf("filenames must differ: %q %q", a, b)
	}
}
