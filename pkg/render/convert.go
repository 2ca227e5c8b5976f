// Package render turns sanitized email messages into a single structured
// text document, grouped by conversation and ordered chronologically.
package render

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/k3a/html2text"
	"golang.org/x/net/html"

	"github.com/mailtidy/mailtidy/internal/logger"
)

// Markdown renders sanitized HTML as Markdown with the same fallback
// behavior the pipeline uses for message bodies.
func Markdown(sanitized string) string {
	return convertBody(sanitized)
}

// convertBody renders sanitized HTML as Markdown. Conversion failure is
// recovered locally by falling back to bare visible text; raw markup is
// never emitted.
func convertBody(sanitized string) string {
	if strings.TrimSpace(sanitized) == "" {
		return ""
	}

	markdown, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		logger.Debug("markdown conversion failed, falling back to plain text", "error", err)
		return visibleText(sanitized)
	}

	return cleanWhitespace(markdown)
}

// visibleText strips tags and returns the readable text content.
func visibleText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// Last resort: entity-aware tag stripping.
		return strings.TrimSpace(html2text.HTML2Text(markup))
	}

	var sb strings.Builder
	textFromNode(doc, &sb)
	return cleanWhitespace(sb.String())
}

func textFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textFromNode(c, sb)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n")
		}
	}
}

// cleanWhitespace collapses runs of blank lines to a single blank line and
// trims the result.
func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	blankCount := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankCount++
			if blankCount <= 1 {
				result = append(result, "")
			}
		} else {
			blankCount = 0
			result = append(result, line)
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
