package sanitize

import (
	"strings"
	"testing"
)

func TestStripConditionalComments(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "downlevel-hidden block",
			in:       `before<!--[if mso]><v:rect>vml</v:rect><![endif]-->after`,
			contains: []string{"before", "after"},
			excludes: []string{"vml", "v:rect", "[if", "[endif]"},
		},
		{
			name:     "block with condition expression",
			in:       `<!--[if gte mso 9]><xml>office</xml><![endif]-->body`,
			contains: []string{"body"},
			excludes: []string{"office", "xml"},
		},
		{
			name:     "multiline block",
			in:       "keep<!--[if mso]>\n<table>\n<tr><td>x</td></tr>\n</table>\n<![endif]-->keep2",
			contains: []string{"keep", "keep2"},
			excludes: []string{"<table>", "x"},
		},
		{
			name:     "bare downlevel-revealed span",
			in:       `a<![if !vml]><img src="fallback.png"><![endif]>b`,
			contains: []string{"a", "b"},
			excludes: []string{"fallback.png"},
		},
		{
			name:     "comment-wrapped endif variant",
			in:       `a<!--[if !mso]><!-->shown<!--<![endif]-->b`,
			contains: []string{"a", "b"},
			excludes: []string{"[endif]", "[if"},
		},
		{
			name:     "stray markers removed individually",
			in:       `a<!--[if mso]>never closed`,
			contains: []string{"a", "never closed"},
			excludes: []string{"[if mso]"},
		},
		{
			name:     "multiple blocks",
			in:       `<!--[if mso]>one<![endif]-->mid<!--[if mso]>two<![endif]-->`,
			contains: []string{"mid"},
			excludes: []string{"one", "two"},
		},
		{
			name:     "plain comments untouched",
			in:       `<!-- regular comment -->text`,
			contains: []string{"<!-- regular comment -->", "text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripConditionalComments(tt.in)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, not := range tt.excludes {
				if strings.Contains(got, not) {
					t.Errorf("output should not contain %q:\n%s", not, got)
				}
			}
		})
	}
}
