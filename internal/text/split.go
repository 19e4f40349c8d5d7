package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks s into chunks of at most limit runes. It cuts at the last
// paragraph break that fits, then the last line break, then the last space, and
// only cuts inside a word when a single word is longer than limit. Chunks are
// trimmed. A limit of zero or less returns s as a single chunk.
func Split(s string, limit int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var chunks []string

	for utf8.RuneCountInString(s) > limit {
		cut := cutPoint(s, limit)

		if chunk := strings.TrimSpace(s[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		s = strings.TrimSpace(s[cut:])
	}

	if s != "" {
		chunks = append(chunks, s)
	}

	return chunks
}

// cutPoint returns the byte offset at which to end the next chunk of s.
func cutPoint(s string, limit int) int {
	end := 0
	for i := 0; i < limit; i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}

	if next, _ := utf8.DecodeRuneInString(s[end:]); unicode.IsSpace(next) {
		return end
	}

	window := s[:end]
	for _, sep := range []string{"\n\n", "\n", " "} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return idx
		}
	}

	return end
}
