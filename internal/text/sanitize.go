package text

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

var (
	htmlPolicy = bluemonday.StrictPolicy()

	markdownDetector = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Table),
	)
)

// normalizeLineWhitespace collapses runs of whitespace inside a line into a single
// space and trims the line.
func normalizeLineWhitespace(line string) string {
	var b strings.Builder

	var space bool

	for _, r := range line {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')

				space = true
			}
		} else {
			b.WriteRune(r)

			space = false
		}
	}

	return strings.TrimSpace(b.String())
}

// Sanitize cleans plain text for display: it normalizes line endings, removes or
// replaces invisible Unicode characters, strips HTML tags, replaces ASCII control
// characters with spaces, collapses whitespace inside each line, limits blank
// lines to one in a row and trims the result.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	s := lineEndingReplacer.Replace(input)
	s = unicodeReplacer.Replace(s)

	if htmlTagRegex.MatchString(s) {
		s = html.UnescapeString(htmlPolicy.Sanitize(s))
	}

	s = controlCharsRegex.ReplaceAllString(s, " ")

	parts := strings.Split(s, "\n")
	for i := range parts {
		parts[i] = normalizeLineWhitespace(parts[i])
	}

	s = strings.Join(parts, "\n")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// IsMarkdown reports whether s contains markdown structure beyond plain
// paragraphs of text, such as headings, emphasis, lists, code, links or tables.
func IsMarkdown(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}

	doc := markdownDetector.Parser().Parse(gmtext.NewReader([]byte(s)))

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindDocument, ast.KindParagraph, ast.KindText, ast.KindString:
			return ast.WalkContinue, nil
		}

		found = true
		return ast.WalkStop, nil
	})

	return found
}
