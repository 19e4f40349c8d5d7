package text_test

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/edgard/plainbot/internal/text"
)

var convertCases = []struct {
	name     string
	input    string
	expected string
}{
	// Basic input
	{name: "empty string", input: "", expected: ""},
	{name: "plain text", input: "hello world", expected: "hello world"},
	{name: "surrounding whitespace", input: "  padded  ", expected: "padded"},
	{name: "crlf line endings", input: "line one\r\nline two", expected: "line one\nline two"},

	// Headings
	{name: "heading", input: "# Title", expected: "Title"},
	{name: "level six heading", input: "###### Deep", expected: "Deep"},
	{name: "seven hashes is not a heading", input: "####### Seven", expected: "####### Seven"},
	{name: "hashtag", input: "#hashtag", expected: "#hashtag"},
	{name: "heading among lines", input: "intro\n## Section\nbody", expected: "intro\nSection\nbody"},

	// Emphasis
	{name: "bold and italic", input: "**bold** and *italic*", expected: "bold and italic"},
	{name: "underscore emphasis", input: "__bold__ and _italic_", expected: "bold and italic"},
	{name: "identifier underscores", input: "snake_case_name", expected: "snake_case_name"},
	{name: "arithmetic asterisks", input: "2 * 3 * 4", expected: "2 * 3 * 4"},
	{name: "emphasis does not span lines", input: "*open\nclose*", expected: "*open\nclose*"},
	{name: "nested emphasis", input: "**bold *inner* text**", expected: "bold inner text"},
	{name: "strikethrough", input: "~~gone~~ kept", expected: "gone kept"},

	// Code
	{name: "inline code", input: "Use `go test` now", expected: "Use go test now"},
	{name: "fenced block on one line", input: "```code block```", expected: ""},
	{name: "fenced block between lines", input: "before\n```go\nfmt.Println(1)\n```\nafter", expected: "before\n\nafter"},
	{name: "unclosed fence is kept", input: "```go\nx := 1", expected: "```go\nx := 1"},

	// Links and images
	{name: "link", input: "[link](http://x.com)", expected: "link"},
	{name: "image leaves no bang", input: "![alt text](img.png)", expected: "alt text"},
	{name: "link url with underscores", input: "See [docs](https://x.com/a_b_c) and ![logo](l.png)!", expected: "See docs and logo!"},
	{name: "image inside link", input: "[![badge](b.svg)](https://ci)", expected: "badge"},
	{name: "bold label then link", input: "**Note:** read [this](u)", expected: "Note: read this"},

	// Block structure
	{name: "blockquote", input: "> quoted line", expected: "quoted line"},
	{name: "empty blockquote line", input: "> a\n>\n> b", expected: "a\n\nb"},
	{name: "horizontal rule", input: "a\n\n---\n\nb", expected: "a\n\nb"},
	{name: "asterisk rule", input: "***", expected: ""},
	{name: "underscore rule", input: "a\n___\nb", expected: "a\n\nb"},
	{name: "unordered list", input: "- one\n* two\n+ three", expected: "• one\n• two\n• three"},
	{name: "indented list item", input: "  - nested", expected: "• nested"},
	{name: "list item with emphasis", input: "* item *with* emphasis", expected: "• item with emphasis"},
	{name: "ordered list", input: "1. first\n2. second", expected: "first\nsecond"},
	{name: "blank line runs", input: "a\n\n\n\nb", expected: "a\n\nb"},
}

func TestConvert(t *testing.T) {
	t.Parallel()

	for _, tt := range convertCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.Convert(tt.input); got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvert_NeverGrows(t *testing.T) {
	t.Parallel()

	for _, tt := range convertCases {
		got := text.Convert(tt.input)
		if utf8.RuneCountInString(got) > utf8.RuneCountInString(tt.input) {
			t.Errorf("Convert(%q) = %q is longer than its input", tt.input, got)
		}
	}
}

func TestConvert_IdempotentOnPlainText(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"hello world",
		"Two paragraphs.\n\nSecond one, with punctuation!",
		"numbers 1, 2 and 3 are fine",
		"  leading and trailing  ",
		"a\n\n\n\nb",
		"ação e coração",
	}

	for _, in := range inputs {
		once := text.Convert(in)
		if twice := text.Convert(once); twice != once {
			t.Errorf("Convert not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFormatResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "whitespace only", input: "   \n\n  ", expected: ""},
		{name: "single line", input: "hello", expected: "hello"},
		{
			name:     "markdown response",
			input:    "# Title\n\nFirst line\nSecond line\n\n\n- item",
			expected: "Title\n\nFirst line\n\nSecond line\n\n• item",
		},
		{
			name:     "indented lines are trimmed",
			input:    "   one   \n\t two",
			expected: "one\n\ntwo",
		},
		{
			name:     "code block removed",
			input:    "Run this:\n```sh\nrm -rf /\n```\nDone.",
			expected: "Run this:\n\nDone.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := text.FormatResponse(tt.input)
			if got != tt.expected {
				t.Errorf("FormatResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}

			if strings.Contains(got, "\n\n\n") {
				t.Errorf("FormatResponse(%q) has more than one blank line in a row: %q", tt.input, got)
			}

			if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
				t.Errorf("FormatResponse(%q) has leading or trailing blank lines: %q", tt.input, got)
			}
		})
	}
}

func TestResponseLines_StopsEarly(t *testing.T) {
	t.Parallel()

	var got []string
	for line := range text.ResponseLines("# a\nb\n\nc\nd") {
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}

	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("ResponseLines() = %q, want %q", got, want)
	}
}

func TestFormatList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		renumber bool
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "bullets keep indentation", input: "- a\n  * b\n+ c", expected: "• a\n  • b\n• c"},
		{name: "numbers kept by default", input: "3. x\n7. y", expected: "3. x\n7. y"},
		{name: "renumbered", input: "3. x\n7. y", renumber: true, expected: "1. x\n2. y"},
		{
			name:     "text restarts numbering",
			input:    "1. a\n2. b\ntext\n5. c",
			renumber: true,
			expected: "1. a\n2. b\ntext\n1. c",
		},
		{
			name:     "nested runs count separately",
			input:    "1. a\n   1. sub\n   4. sub2\n9. b",
			renumber: true,
			expected: "1. a\n   1. sub\n   2. sub2\n2. b",
		},
		{
			name:     "blank lines keep the run",
			input:    "1. a\n\n3. b",
			renumber: true,
			expected: "1. a\n\n2. b",
		},
		{name: "other markdown untouched", input: "# Title\n**bold**", expected: "# Title\n**bold**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opts []text.ListOption
			if tt.renumber {
				opts = append(opts, text.WithRenumbering())
			}

			if got := text.FormatList(tt.input, opts...); got != tt.expected {
				t.Errorf("FormatList(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
