package chunk

import (
	"strings"
	"testing"
)

func TestSplitEmpty(t *testing.T) {
	if got := Split("", DefaultMaxLength, DefaultOverlap); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
}

func TestSplitShortText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"single word", "hello"},
		{"sentence", "This is a short sentence."},
		{"exactly max length", strings.Repeat("a", DefaultMaxLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, DefaultMaxLength, DefaultOverlap)
			if len(got) != 1 || got[0] != tt.text {
				t.Errorf("Split(%q) = %v, want [%q]", tt.text, got, tt.text)
			}
		})
	}
}

func TestSplitLongText(t *testing.T) {
	// 1200 characters with no sentence boundaries: windows of 500
	// advancing by 450 yield chunks at 0, 450 and 900.
	text := strings.Repeat("a", 1200)

	got := Split(text, 500, 50)

	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3", len(got))
	}
	for i, c := range got {
		if len(c) > 500 {
			t.Errorf("chunk %d has length %d, want <= 500", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty after trimming", i)
		}
	}
}

func TestSplitStopsAfterFinalWindow(t *testing.T) {
	// Once a window reaches the end of the text the split is done; the
	// cursor must not step back by the overlap and re-emit the tail as
	// ever-shrinking fragments.
	t.Run("uniform text", func(t *testing.T) {
		got := Split(strings.Repeat("a", 1200), 500, 50)

		wantLens := []int{500, 500, 300}
		if len(got) != len(wantLens) {
			t.Fatalf("got %d chunks, want %d", len(got), len(wantLens))
		}
		for i, want := range wantLens {
			if len(got[i]) != want {
				t.Errorf("chunk %d has length %d, want %d", i, len(got[i]), want)
			}
		}
	})

	t.Run("just over one window", func(t *testing.T) {
		got := Split(strings.Repeat("a", 520), 500, 50)

		if len(got) != 2 {
			t.Fatalf("got %d chunks, want 2", len(got))
		}
		if len(got[0]) != 500 || len(got[1]) != 70 {
			t.Errorf("chunk lengths = %d, %d, want 500, 70", len(got[0]), len(got[1]))
		}
	})

	t.Run("no chunk shorter than the final remainder", func(t *testing.T) {
		got := Split(strings.Repeat("a", 1200), 500, 50)

		for i, c := range got {
			if len(c) < 50 {
				t.Errorf("chunk %d has length %d; tail fragments must not be re-emitted", i, len(c))
			}
		}
	})
}

func TestSplitOverlap(t *testing.T) {
	text := strings.Repeat("a", 1200)

	got := Split(text, 500, 50)

	// Consecutive chunks share overlap characters.
	for i := 1; i < len(got); i++ {
		tail := got[i-1][len(got[i-1])-50:]
		if !strings.HasPrefix(got[i], tail) {
			t.Errorf("chunk %d does not start with the previous chunk's overlap", i)
		}
	}
}

func TestSplitSentenceBoundary(t *testing.T) {
	// A period lands in the second half of the first window, so the
	// first chunk should end there rather than mid-sentence.
	first := strings.Repeat("a", 300) + ". "
	text := first + strings.Repeat("b", 400)

	got := Split(text, 500, 50)

	if len(got) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(got))
	}
	if !strings.HasSuffix(got[0], ".") {
		t.Errorf("first chunk %q does not end at the sentence boundary", got[0])
	}
}

func TestSplitIgnoresEarlyBoundary(t *testing.T) {
	// The only period sits in the first half of the window; breaking
	// there would produce tiny chunks, so the full window is used.
	text := strings.Repeat("a", 100) + ". " + strings.Repeat("b", 900)

	got := Split(text, 500, 50)

	if len(got[0]) != 500 {
		t.Errorf("first chunk has length %d, want full window of 500", len(got[0]))
	}
}

func TestSplitNewlineBoundary(t *testing.T) {
	text := strings.Repeat("a", 400) + "\n" + strings.Repeat("b", 400)

	got := Split(text, 500, 50)

	if len(got) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(got))
	}
	if got[0] != strings.Repeat("a", 400) {
		t.Errorf("first chunk = %q..., want break at the newline", got[0][:min(20, len(got[0]))])
	}
}

func TestSplitCoverage(t *testing.T) {
	// Every part of the input must appear in some chunk: walking the
	// chunks in order, each one is found at or before the previous
	// chunk's end.
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	got := Split(text, 500, 50)

	pos := 0
	for i, c := range got {
		idx := strings.Index(text[pos:], c)
		if idx < 0 {
			t.Fatalf("chunk %d not found in input after offset %d", i, pos)
		}
		// The next chunk must begin no later than this chunk's end.
		pos += idx + len(c) - 50
		if pos < 0 {
			pos = 0
		}
	}
	// The final chunk reaches the end of the input (modulo trimming).
	last := got[len(got)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), last) {
		t.Errorf("final chunk does not reach the end of the input")
	}
}

func TestSplitNonEmptyChunks(t *testing.T) {
	inputs := []string{
		strings.Repeat(" ", 10),
		strings.Repeat("x", 501) + strings.Repeat(" ", 600),
		"a\n\n\n" + strings.Repeat("b", 600),
	}

	for _, text := range inputs {
		for _, c := range Split(text, 500, 50) {
			if strings.TrimSpace(c) == "" {
				t.Errorf("Split(%q...) returned a blank chunk", text[:min(10, len(text))])
			}
		}
	}
}

func TestSplitMultibyte(t *testing.T) {
	// Multi-byte runes must never be split mid-code-point.
	text := strings.Repeat("héllo wörld ", 100)

	for _, c := range Split(text, 100, 10) {
		for _, r := range c {
			if r == '�' {
				t.Fatalf("chunk contains replacement character: %q", c)
			}
		}
	}
}

func TestSplitDegenerateOverlap(t *testing.T) {
	// overlap >= maxLength must still terminate.
	text := strings.Repeat("a", 50)

	got := Split(text, 10, 20)

	if len(got) == 0 {
		t.Fatal("expected chunks, got none")
	}
	for _, c := range got {
		if c == "" {
			t.Error("got empty chunk")
		}
	}
}
