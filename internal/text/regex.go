package text

import (
	"regexp"
	"strconv"
	"strings"
)

// Markdown syntax patterns, applied by Convert in the order listed in markdownRules.
var (
	fencedCodeRegex = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
	imageRegex      = regexp.MustCompile(`!\[([^\]\n]*)\]\([^)\n]*\)`)
	linkRegex       = regexp.MustCompile(`\[([^\]\n]*)\]\([^)\n]*\)`)
	headingRegex    = regexp.MustCompile("(?m)^#{" + strconv.Itoa(headingMinLevel) + "," + strconv.Itoa(headingMaxLevel) + "}[ \t]+")

	// Emphasis bodies may not start or end with whitespace, so "* item" and "2 * 3"
	// never open a span.
	boldRegex      = regexp.MustCompile(`\*\*([^\s*](?:[^\n]*?[^\s*])?)\*\*`)
	boldAltRegex   = regexp.MustCompile(`__([^\s_](?:[^\n]*?[^\s_])?)__`)
	italicRegex    = regexp.MustCompile(`\*([^\s*](?:[^*\n]*?[^\s*])?)\*`)
	italicAltRegex = regexp.MustCompile(`_([^\s_](?:[^_\n]*?[^\s_])?)_`)
	strikeRegex    = regexp.MustCompile(`~~([^\n]+?)~~`)

	blockquoteRegex     = regexp.MustCompile(`(?m)^>(?:[ \t]+|$)`)
	horizontalRuleRegex = regexp.MustCompile("(?m)^[ \t]*(?:-{" + strconv.Itoa(minHorizontalRuleLength) + ",}|\\*{" + strconv.Itoa(minHorizontalRuleLength) + ",}|_{" + strconv.Itoa(minHorizontalRuleLength) + ",})[ \t]*$")
	unorderedListRegex  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	orderedListRegex    = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)

	multipleNewlinesRegex = regexp.MustCompile("\n{" + strconv.Itoa(minNewlinesThreshold) + ",}")
)

// Per-line list patterns used by FormatList, which keeps indentation.
var (
	listBulletLineRegex  = regexp.MustCompile(`^([ \t]*)[-*+][ \t]+`)
	listOrderedLineRegex = regexp.MustCompile(`^([ \t]*)(\d+)\.([ \t]+)`)
)

var (
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	htmlTagRegex      = regexp.MustCompile(`</?[a-zA-Z!][^>]*>`)

	lineEndingReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	unicodeReplacer = strings.NewReplacer(
		"\u2060", "", "\uFEFF", "",
		"\u00AD", "", "\u200D", "",
		"\u200E", "", "\u200F", "",
		"\u202A", "", "\u202B", "",
		"\u202C", "", "\u202D", "", "\u202E", "",
		"\u2061", "", "\u2062", "",
		"\u2063", "", "\u2064", "",
		"\u2028", "\n", "\u2029", "\n\n",
		"\u200B", " ", "\u200C", " ",
		"\u205F", " ", "\u2009", " ",
		"\u200A", " ", "\u202F", " ",
		"\u00A0", " ",
	)
)
