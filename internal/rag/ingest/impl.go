package ingest

import (
	"strings"
	"unicode/utf8"
)

//splitter

// boundary preference, best first
var separators = []string{"\n\n", "\n", " "}

// splitTextIntoChunks is a deterministic sliding-window split. Each window
// ends at the latest paragraph, line or space boundary inside it, falling
// back to a hard character cut when none exists. The next window starts
// `overlap` characters before the previous cut, so every character of the
// input lands in at least one chunk.
func splitTextIntoChunks(text string, limit int, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + limit
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		cut := findBreak(text, start, end)
		chunks = append(chunks, text[start:cut])

		next := alignRune(text, cut-overlap)
		if next <= start {
			// window produced no progress against the overlap, move on hard
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak returns the cut position inside (start, end]: just past the
// last preferred separator in the window, or a hard cut at end aligned to
// the nearest rune start so a multi-byte character is never torn.
func findBreak(text string, start int, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return alignRune(text, end)
}

// alignRune backs pos up to the start of the rune it lands inside.
func alignRune(text string, pos int) int {
	if pos < 0 {
		return 0
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}
