package text

import (
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type replacement struct {
	re   *regexp.Regexp
	repl string
	// inWord leaves matches whose delimiters touch a letter or digit alone.
	inWord bool
}

// Code and link syntax go first so that underscores and asterisks inside URLs or
// code spans never reach the emphasis rules.
var markdownRules = []replacement{
	{fencedCodeRegex, "", false},
	{inlineCodeRegex, "$1", false},
	{imageRegex, "$1", false},
	{linkRegex, "$1", false},
	{headingRegex, "", false},
	{boldRegex, "$1", false},
	{boldAltRegex, "$1", true},
	{italicRegex, "$1", false},
	{italicAltRegex, "$1", true},
	{strikeRegex, "$1", false},
	{blockquoteRegex, "", false},
	{horizontalRuleRegex, "", false},
	{unorderedListRegex, Bullet, false},
	{orderedListRegex, "", false},
	{multipleNewlinesRegex, "\n\n", false},
}

// Convert strips markdown syntax from md and returns plain text. Headings,
// emphasis, strikethrough, code spans, links, images and blockquote markers
// lose their syntax and keep their text; fenced code blocks and horizontal rules
// are removed; unordered list markers become bullets and ordered list markers are
// dropped. Blank-line runs collapse to one blank line and the result is trimmed.
//
// Input without markdown passes through unchanged apart from line endings,
// blank-line collapsing and trimming.
func Convert(md string) string {
	if md == "" {
		return ""
	}

	s := lineEndingReplacer.Replace(md)

	for _, rule := range markdownRules {
		if rule.inWord {
			s = replaceOutsideWords(rule.re, s)
			continue
		}
		s = rule.re.ReplaceAllString(s, rule.repl)
	}

	return strings.TrimSpace(s)
}

// replaceOutsideWords replaces each match with its first group unless the match is
// glued to a letter or digit, so identifiers like snake_case_name survive.
func replaceOutsideWords(re *regexp.Regexp, s string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(s[m[2]:m[3]])
		last = end
	}
	b.WriteString(s[last:])

	return b.String()
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// ResponseLines converts text and yields its non-empty lines, trimmed, in order.
func ResponseLines(text string) iter.Seq[string] {
	plain := Convert(text)

	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(plain, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// FormatResponse converts an AI response to plain text with every line set off
// as its own paragraph, separated by exactly one blank line.
func FormatResponse(text string) string {
	return strings.Join(slices.Collect(ResponseLines(text)), "\n\n")
}

// ListOption configures FormatList.
type ListOption func(*listOptions)

type listOptions struct {
	renumber bool
}

// WithRenumbering makes FormatList number ordered items sequentially instead of
// keeping the numbers they were written with. Each run of items at the same
// indentation counts from 1; any other non-blank line restarts the count.
func WithRenumbering() ListOption {
	return func(o *listOptions) {
		o.renumber = true
	}
}

// FormatList replaces unordered list markers with bullets, keeping indentation.
// Ordered items keep their original numbers unless WithRenumbering is given.
// Everything else passes through untouched.
func FormatList(md string, opts ...ListOption) string {
	if md == "" {
		return ""
	}

	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}

	lines := strings.Split(lineEndingReplacer.Replace(md), "\n")

	// counters by indentation width
	counters := map[int]int{}

	for i, line := range lines {
		if m := listBulletLineRegex.FindStringSubmatchIndex(line); m != nil {
			lines[i] = line[:m[3]] + Bullet + line[m[1]:]
			resetDeeper(counters, indentWidth(line[:m[3]]))
			continue
		}

		if m := listOrderedLineRegex.FindStringSubmatchIndex(line); m != nil {
			if !o.renumber {
				continue
			}
			indent := line[:m[3]]
			width := indentWidth(indent)
			resetDeeper(counters, width)
			counters[width]++
			lines[i] = indent + strconv.Itoa(counters[width]) + "." + line[m[6]:m[7]] + line[m[1]:]
			continue
		}

		if strings.TrimSpace(line) != "" {
			clear(counters)
		}
	}

	return strings.Join(lines, "\n")
}

func resetDeeper(counters map[int]int, width int) {
	for w := range counters {
		if w > width {
			delete(counters, w)
		}
	}
}

func indentWidth(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 4
			continue
		}
		width++
	}
	return width
}
