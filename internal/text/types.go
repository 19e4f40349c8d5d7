// Package text converts markdown into plain text suitable for chat delivery.
// It strips markdown syntax, reflows AI responses into paragraphs, normalizes
// lists, removes invisible Unicode and residual HTML, and splits long text into
// message-sized chunks. Every function is pure and safe for concurrent use.
package text

const (
	minNewlinesThreshold    = 3
	minHorizontalRuleLength = 3
	headingMinLevel         = 1
	headingMaxLevel         = 6

	// Bullet replaces unordered list markers.
	Bullet = "• "
)

// Mode selects the transformation a Normalizer applies.
type Mode string

const (
	ModePlain    Mode = "plain"    // Convert
	ModeResponse Mode = "response" // FormatResponse
	ModeList     Mode = "list"     // FormatList
)
