package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// isDataTable reports whether a table conveys tabular information rather
// than layout. The heuristic: a table is data iff it has a th descendant or
// an explicit grid/table ARIA role. A th used purely for styling will be
// misclassified as data; that is accepted behavior.
func isDataTable(table *goquery.Selection) bool {
	if table.Find("th").Length() > 0 {
		return true
	}
	role := strings.ToLower(strings.TrimSpace(table.AttrOr("role", "")))
	return role == "grid" || role == "table"
}

// resolveTables classifies every table and unwraps the layout ones,
// replacing each by the newline-joined inner markup of its cells. Tables
// are resolved innermost first: a table is only processed once all tables
// nested inside it have been resolved, so every table is classified against
// its final contents.
func (s *Sanitizer) resolveTables(doc *goquery.Document, result *Result) {
	resolved := make(map[*html.Node]bool)

	for pass := 0; pass < s.config.maxPasses(); pass++ {
		changed := false

		doc.Find("table").Each(func(_ int, table *goquery.Selection) {
			if len(table.Nodes) == 0 || resolved[table.Nodes[0]] {
				return
			}

			// Skip until every nested table has been dealt with.
			pending := false
			table.Find("table").EachWithBreak(func(_ int, nested *goquery.Selection) bool {
				if !resolved[nested.Nodes[0]] {
					pending = true
					return false
				}
				return true
			})
			if pending {
				return
			}

			if isDataTable(table) {
				resolved[table.Nodes[0]] = true
				result.Stats.TablesKept++
				changed = true
				return
			}

			table.ReplaceWithHtml(s.unwrapTableCells(table))
			result.Stats.TablesUnwrapped++
			result.Stats.RecordRemoval("table")
			changed = true
		})

		if !changed {
			break
		}
	}
}

// unwrapTableCells returns the newline-joined inner markup of the table's
// own cells. Cells of nested (already resolved, data) tables stay inside
// their table markup and are not collected twice; empty cells contribute
// nothing.
func (s *Sanitizer) unwrapTableCells(table *goquery.Selection) string {
	tableNode := table.Nodes[0]
	var parts []string

	table.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		owner := cell.Closest("table")
		if owner.Length() == 0 || owner.Nodes[0] != tableNode {
			return
		}
		inner, err := cell.Html()
		if err != nil {
			inner = cell.Text()
		}
		if strings.TrimSpace(inner) == "" {
			return
		}
		parts = append(parts, inner)
	})

	return strings.Join(parts, "\n")
}
