package text

import (
	"fmt"
	"strings"
)

// ParseMode maps a configured mode name onto a Mode. Matching ignores case and
// surrounding spaces; an empty name selects ModeResponse.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeResponse:
		return ModeResponse, nil
	case ModePlain:
		return ModePlain, nil
	case ModeList:
		return ModeList, nil
	default:
		return "", fmt.Errorf("unknown normalizer mode %q", name)
	}
}

// Normalizer turns raw, possibly markdown, text into plain chunks ready to be
// sent as individual chat messages.
type Normalizer struct {
	Mode      Mode
	Renumber  bool // renumber ordered lists in ModeList
	MaxLength int  // runes per chunk, zero for no limit
}

// Apply runs the mode's transformation on s and returns the full plain text.
//
// ModePlain skips Convert for input that carries no markdown structure, so
// incidental asterisks or underscores in ordinary prose stay as written.
// ModeList keeps indentation and therefore skips Sanitize.
func (n Normalizer) Apply(s string) string {
	switch n.Mode {
	case ModePlain:
		if IsMarkdown(s) {
			s = Convert(s)
		}
		return Sanitize(s)
	case ModeList:
		var opts []ListOption
		if n.Renumber {
			opts = append(opts, WithRenumbering())
		}
		return strings.TrimSpace(FormatList(s, opts...))
	default:
		return Sanitize(FormatResponse(s))
	}
}

// Normalize applies the normalizer and splits the result into chunks of at most
// MaxLength runes. Empty or whitespace-only input yields no chunks.
func (n Normalizer) Normalize(s string) []string {
	return Split(n.Apply(s), n.MaxLength)
}
