// Package chunk splits long documents into overlapping segments sized for
// the embedding model's effective input window.
//
// Segments prefer sentence boundaries: the end of each window is trimmed
// back to the nearest ". " or newline, as long as the break point falls in
// the second half of the window. Consecutive segments share a configurable
// number of characters so context survives the cut.
package chunk

import "strings"

// Default policy values. 500 characters keeps segments comfortably inside
// the embedding model's input limit; 50 characters of overlap preserves
// context across boundaries.
const (
	DefaultMaxLength = 500
	DefaultOverlap   = 50
)

// Split splits text into overlapping, sentence-boundary-aware segments of
// at most maxLength characters. It returns nil for empty input and a
// single-element slice when the text already fits in one segment.
//
// Segments are whitespace-trimmed and never empty. maxLength and overlap
// fall back to the defaults when non-positive; overlap is clamped below
// maxLength so the cursor always advances.
func Split(text string, maxLength, overlap int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxLength {
		overlap = maxLength - 1
	}

	if text == "" {
		return nil
	}

	// Work in runes so multi-byte characters never split mid-code-point.
	runes := []rune(text)
	if len(runes) <= maxLength {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + maxLength

		if end < len(runes) {
			// Prefer a sentence boundary near the end of the window,
			// but only if it lands in the second half. Breaking earlier
			// would produce tiny fragments.
			window := string(runes[start:end])
			breakPoint := lastBoundary(window)
			if breakPoint > maxLength/2 {
				end = start + breakPoint + 1
			}
		} else {
			end = len(runes)
		}

		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}

		// The final window consumes the rest of the text; stepping back
		// by the overlap here would re-emit the tail.
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the rune index of the last sentence terminator in
// window, or -1 when none is found. A terminator is the period of a ". "
// pair or a newline.
func lastBoundary(window string) int {
	runes := []rune(window)
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
		if runes[i] == '.' && i+1 < len(runes) && runes[i+1] == ' ' {
			return i
		}
	}
	return -1
}
