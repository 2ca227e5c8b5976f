package sanitize

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// dangerousTags never carry content worth keeping in an email body. head is
// included because goquery parses fragments into a full document.
var dangerousTags = []string{
	"script", "style", "noscript", "iframe", "object", "embed", "applet", "head",
}

// hiddenStyleMarkers are matched as literal substrings of the style
// attribute, not parsed CSS. Mail clients do the same.
var hiddenStyleMarkers = []string{
	"display:none", "display: none", "visibility:hidden", "visibility: hidden",
}

// Sanitizer cleans untrusted HTML email bodies. It holds no per-call
// state; a single Sanitizer is safe for concurrent use.
type Sanitizer struct {
	config *Config
}

// New creates a new Sanitizer with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Sanitizer{
		config: config,
	}
}

// Name returns the sanitizer name for logging.
func (s *Sanitizer) Name() string {
	return "sanitize"
}

// Sanitize cleans the input HTML and returns the sanitized markup.
// It is total: malformed input is parsed permissively and processed
// best-effort, and re-running it on its own output is a no-op.
func (s *Sanitizer) Sanitize(input string) string {
	return s.SanitizeWithStats(input).Content
}

// SanitizeWithStats performs sanitization and returns detailed stats.
func (s *Sanitizer) SanitizeWithStats(input string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(input)

	// Pre-parse stages operate on the raw string: escape decoding undoes the
	// JSON-string transport encoding, and conditional blocks are cut out
	// wholesale before the parser can interpret their contents.
	if s.config.DecodeEscapes {
		input = DecodeEscapes(input)
	}
	if s.config.StripConditionalComments {
		stripped := StripConditionalComments(input)
		if len(stripped) != len(input) {
			result.Stats.ConditionalBlocksRemoved++
		}
		input = stripped
	}

	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	result.Stats.ParseDuration = time.Since(parseStart)

	if err != nil {
		// Graceful degradation: return the pre-parse result with a warning.
		result.Content = strings.TrimSpace(input)
		result.AddWarning("parse", "HTML parse failed, returning input", err.Error())
		result.Stats.OutputBytes = len(result.Content)
		result.Stats.TotalDuration = time.Since(startTime)
		return result
	}

	transformStart := time.Now()
	s.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	output, err := s.serialize(doc)
	result.Stats.OutputDuration = time.Since(outputStart)

	if err != nil {
		result.Content = strings.TrimSpace(input)
		result.AddWarning("output", "serialization failed, returning input", err.Error())
		result.Stats.OutputBytes = len(result.Content)
	} else {
		result.Content = output
		result.Stats.OutputBytes = len(output)
	}

	result.Stats.TotalDuration = time.Since(startTime)

	return result
}

// transform applies all configured rules to the document.
// Order matters: each rule's removals are permanent before the next runs.
func (s *Sanitizer) transform(doc *goquery.Document, result *Result) {
	if s.config.StripDangerous {
		for _, tag := range dangerousTags {
			s.removeElements(doc, tag, result)
		}
	}

	if s.config.StripHidden {
		s.removeHiddenElements(doc, result)
	}

	if s.config.StripTrackingPixels {
		s.removeTrackingPixels(doc, result)
	}

	if s.config.StripBlockquotes {
		s.removeElements(doc, "blockquote", result)
	}

	if s.config.UnwrapLayoutTables {
		s.resolveTables(doc, result)
	}

	if s.config.StripPresentationAttrs {
		s.stripPresentationAttrs(doc, result)
	}

	if s.config.UnwrapOrphanTableParts {
		s.unwrapOrphanTableParts(doc, result)
	}

	if s.config.StripComments {
		for _, n := range doc.Selection.Nodes {
			s.removeCommentNodes(n, result)
		}
	}

	doc.Find("*").Each(func(_ int, _ *goquery.Selection) {
		result.Stats.ElementsKept++
	})
}

// removeElements removes all elements matching the given tag.
func (s *Sanitizer) removeElements(doc *goquery.Document, tag string, result *Result) {
	doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		result.Stats.RecordRemoval(tag)
		sel.Remove()
	})
}

// removeHiddenElements removes elements hidden via inline style or the
// boolean hidden attribute, subtree included. Visible siblings are kept.
func (s *Sanitizer) removeHiddenElements(doc *goquery.Document, result *Result) {
	doc.Find("[hidden]").Each(func(_ int, sel *goquery.Selection) {
		result.Stats.HiddenElementRemovals++
		result.Stats.RecordRemoval(goquery.NodeName(sel))
		sel.Remove()
	})

	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		style = strings.ToLower(style)
		for _, marker := range hiddenStyleMarkers {
			if strings.Contains(style, marker) {
				result.Stats.HiddenElementRemovals++
				result.Stats.RecordRemoval(goquery.NodeName(sel))
				sel.Remove()
				return
			}
		}
	})
}

// removeTrackingPixels removes 1x1 and 0x0 images. Images with any other
// dimensions, including missing ones, are retained.
func (s *Sanitizer) removeTrackingPixels(doc *goquery.Document, result *Result) {
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		width, hasWidth := sel.Attr("width")
		height, hasHeight := sel.Attr("height")
		if !hasWidth || !hasHeight {
			return
		}
		width = strings.TrimSpace(width)
		height = strings.TrimSpace(height)
		if (width == "1" && height == "1") || (width == "0" && height == "0") {
			result.Stats.TrackingPixelRemovals++
			result.Stats.RecordRemoval("img")
			sel.Remove()
		}
	})
}

// stripPresentationAttrs removes styling attributes from every element.
func (s *Sanitizer) stripPresentationAttrs(doc *goquery.Document, result *Result) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range s.config.PresentationAttrs {
			if _, exists := sel.Attr(attr); exists {
				sel.RemoveAttr(attr)
				result.Stats.AttributesRemoved++
			}
		}
	})
}

// unwrapOrphanTableParts replaces table-structure elements that are no
// longer inside a table with their own children. Layout-table unwrapping
// leaves these behind when a cell itself contained structural wrappers.
func (s *Sanitizer) unwrapOrphanTableParts(doc *goquery.Document, result *Result) {
	for pass := 0; pass < s.config.maxPasses(); pass++ {
		unwrapped := false
		doc.Find("tbody, thead, tfoot, tr, td, th, center").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if sel.Closest("table").Length() > 0 {
				return true
			}
			inner, err := sel.Html()
			if err != nil {
				inner = sel.Text()
			}
			sel.ReplaceWithHtml(inner)
			result.Stats.OrphanPartsUnwrapped++
			unwrapped = true
			// Restart the scan: the replacement invalidates later matches.
			return false
		})
		if !unwrapped {
			break
		}
	}
}

// removeCommentNodes walks the node tree and removes comment nodes in place.
func (s *Sanitizer) removeCommentNodes(n *html.Node, result *Result) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			result.Stats.CommentsRemoved++
			continue
		}
		s.removeCommentNodes(c, result)
	}
}

// serialize renders the document body and normalizes blank lines.
func (s *Sanitizer) serialize(doc *goquery.Document) (string, error) {
	// Serialize from body to skip the wrapper the parser adds.
	out, err := doc.Find("body").Html()
	if err != nil {
		out, err = doc.Html()
		if err != nil {
			return "", err
		}
	}

	if s.config.CollapseBlankLines {
		out = collapseBlankLines(out)
	}

	return strings.TrimSpace(out), nil
}

// collapseBlankLines replaces runs of three or more blank lines with a
// single blank line. Shorter runs are kept as-is so intentional spacing
// survives.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0

	flush := func() {
		if blanks >= 3 {
			out = append(out, "")
		} else {
			for i := 0; i < blanks; i++ {
				out = append(out, "")
			}
		}
		blanks = 0
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n")
}
