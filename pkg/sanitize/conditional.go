package sanitize

import "regexp"

// Outlook wraps presentational markup in downlevel-hidden conditional
// comments. Nothing inside them is meaningful to any other client, so whole
// spans are deleted before parsing.
var (
	// <!--[if mso]> ... <![endif]--> including the <!--<![endif]--> variant.
	conditionalBlockRegex = regexp.MustCompile(`(?is)<!--\[if[^\]]*\]>.*?<!\[endif\]\s*-->`)

	// Bare downlevel-revealed form: <![if !mso]> ... <![endif]>
	conditionalBareRegex = regexp.MustCompile(`(?is)<!\[if[^\]]*\]>.*?<!\[endif\]>`)

	// Stray markers left behind by truncated or malformed blocks.
	conditionalMarkerRegex = regexp.MustCompile(`(?i)<!(?:--)?\[if[^\]]*\]>|<!(?:--<)?!?\[endif\](?:--)?>`)
)

// StripConditionalComments deletes vendor-conditional comment spans, their
// contents included. Unterminated markers are deleted individually rather
// than swallowing the rest of the document.
func StripConditionalComments(s string) string {
	s = conditionalBlockRegex.ReplaceAllString(s, "")
	s = conditionalBareRegex.ReplaceAllString(s, "")
	s = conditionalMarkerRegex.ReplaceAllString(s, "")
	return s
}
