package git

import "strings"

// TextParser turns raw commit text (a subject line or a body) into a
// structured value. It is supplied by the caller; the extractor never looks
// inside the result.
type TextParser func(raw string) (any, error)

// Text is the subject or body of a commit. It is either the raw text as
// reported by git, or the value a TextParser produced from it.
type Text struct {
	Raw    string
	Parsed any
	// IsParsed distinguishes a parser result of nil from the raw variant.
	IsParsed bool
}

// RawText creates the raw variant.
func RawText(s string) Text {
	return Text{Raw: s}
}

// ParsedText creates the parsed variant, keeping the raw text alongside.
func ParsedText(raw string, v any) Text {
	return Text{Raw: raw, Parsed: v, IsParsed: true}
}

// Value returns what a template or classifier should see: the parser result
// for the parsed variant, the raw string otherwise.
func (t Text) Value() any {
	if t.IsParsed {
		return t.Parsed
	}
	return t.Raw
}

// String returns the raw text.
func (t Text) String() string {
	return t.Raw
}

// Commit is one commit of the inspected range.
type Commit struct {
	Hash    string
	Parents []string
	Subject Text
	// Body is nil when the commit message has no body.
	Body *Text
	// Footer maps trailer tokens (e.g. "Signed-off-by") to their values.
	Footer map[string][]string
	Merge  bool
}

// ShortHash returns the first 7 characters of the hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

// FooterValue returns the first value for a trailer token, matched
// case-insensitively.
func (c Commit) FooterValue(token string) (string, bool) {
	for k, values := range c.Footer {
		if strings.EqualFold(k, token) && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

// ExtractOptions configures a single extraction.
type ExtractOptions struct {
	// StartRef is exclusive. Empty means full history up to EndRef.
	StartRef string
	// EndRef is inclusive. Empty means HEAD.
	EndRef              string
	IncludeMergeCommits bool
	ParseSubject        TextParser
	ParseBody           TextParser
}
