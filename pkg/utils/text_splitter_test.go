package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := SplitText("hello", 100, 10)
		if len(chunks) != 1 || chunks[0] != "hello" {
			t.Errorf("chunks = %v, want single original chunk", chunks)
		}
	})

	t.Run("chunks overlap at boundaries", func(t *testing.T) {
		text := strings.Repeat("a", 25)
		chunks := SplitText(text, 10, 4)

		if len(chunks) < 3 {
			t.Fatalf("chunks = %d, want at least 3", len(chunks))
		}
		for i, c := range chunks[:len(chunks)-1] {
			if len(c) != 10 {
				t.Errorf("chunk %d length = %d, want 10", i, len(c))
			}
		}
	})

	t.Run("overlap larger than size falls back to no overlap", func(t *testing.T) {
		text := strings.Repeat("b", 30)
		chunks := SplitText(text, 10, 15)
		if len(chunks) != 3 {
			t.Errorf("chunks = %d, want 3 disjoint chunks", len(chunks))
		}
	})

	t.Run("reassembly covers the full text", func(t *testing.T) {
		text := "The quick brown fox jumps over the lazy dog, twice."
		chunks := SplitText(text, 20, 5)

		if !strings.HasPrefix(text, chunks[0]) {
			t.Error("first chunk should be a prefix of the input")
		}
		last := chunks[len(chunks)-1]
		if !strings.HasSuffix(text, last) {
			t.Error("last chunk should be a suffix of the input")
		}
	})
}
