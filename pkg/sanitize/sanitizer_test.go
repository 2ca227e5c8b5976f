package sanitize

import (
	"strings"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		s := New(nil)
		if s == nil {
			t.Fatal("expected non-nil sanitizer")
		}
		if s.config == nil {
			t.Fatal("expected non-nil config")
		}
		if !s.config.StripDangerous {
			t.Error("expected StripDangerous to be true by default")
		}
	})

	t.Run("custom config is used", func(t *testing.T) {
		cfg := &Config{
			StripDangerous: false,
			StripComments:  true,
		}
		s := New(cfg)
		if s.config.StripDangerous {
			t.Error("expected StripDangerous to be false")
		}
		if !s.config.StripComments {
			t.Error("expected StripComments to be true")
		}
	})
}

func TestName(t *testing.T) {
	s := New(nil)
	if s.Name() != "sanitize" {
		t.Errorf("expected name 'sanitize', got '%s'", s.Name())
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		config   *Config
		contains []string
		excludes []string
	}{
		{
			name:     "removes script tags",
			html:     `<p>Hello</p><script>alert('x')</script>`,
			contains: []string{"Hello"},
			excludes: []string{"<script", "alert"},
		},
		{
			name:     "removes style tags",
			html:     `<style>.foo{color:red}</style><p>Hello</p>`,
			contains: []string{"Hello"},
			excludes: []string{"<style", "color:red"},
		},
		{
			name:     "removes iframes and objects",
			html:     `<iframe src="https://evil.example"></iframe><object data="x"></object><embed src="y"><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"<iframe", "<object", "<embed"},
		},
		{
			name:     "removes noscript and applet",
			html:     `<noscript>no js</noscript><applet code="A"></applet><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"<noscript", "no js", "<applet"},
		},
		{
			name:     "removes head content",
			html:     `<html><head><title>Subject line</title></head><body><p>Body</p></body></html>`,
			contains: []string{"Body"},
			excludes: []string{"Subject line", "<title"},
		},
		{
			name:     "removes display:none elements",
			html:     `<div style="display:none">Hidden</div><p>Visible</p>`,
			contains: []string{"Visible"},
			excludes: []string{"Hidden"},
		},
		{
			name:     "removes display: none with space",
			html:     `<div style="display: none">Hidden</div><p>Visible</p>`,
			contains: []string{"Visible"},
			excludes: []string{"Hidden"},
		},
		{
			name:     "removes visibility:hidden elements",
			html:     `<span style="visibility:hidden">Hidden</span><span style="visibility: hidden">AlsoHidden</span><p>Visible</p>`,
			contains: []string{"Visible"},
			excludes: []string{"Hidden", "AlsoHidden"},
		},
		{
			name:     "removes hidden attribute elements",
			html:     `<div hidden>Preheader text</div><p>Visible</p>`,
			contains: []string{"Visible"},
			excludes: []string{"Preheader"},
		},
		{
			name:     "keeps elements with other styles",
			html:     `<div style="color: red; display: block">Shown</div>`,
			contains: []string{"Shown"},
		},
		{
			name:     "removes 1x1 tracking pixel",
			html:     `<img src="https://t.example/open" width="1" height="1"><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"<img", "t.example"},
		},
		{
			name:     "removes 0x0 tracking pixel",
			html:     `<img src="https://t.example/open" width="0" height="0"><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"<img"},
		},
		{
			name:     "keeps sized images",
			html:     `<img src="photo.jpg" width="200" height="100">`,
			contains: []string{"<img", "photo.jpg"},
		},
		{
			name:     "keeps images without dimensions",
			html:     `<img src="photo.jpg">`,
			contains: []string{"<img", "photo.jpg"},
		},
		{
			name:     "keeps mixed-dimension images",
			html:     `<img src="spacer.gif" width="1" height="20">`,
			contains: []string{"<img", "spacer.gif"},
		},
		{
			name:     "strips presentational attributes",
			html:     `<p class="MsoNormal" style="margin:0" align="center" bgcolor="#fff">Text</p>`,
			contains: []string{"<p>", "Text"},
			excludes: []string{"class=", "style=", "align=", "bgcolor="},
		},
		{
			name:     "strips html comments",
			html:     `<p>Keep<!-- tracking id 12345 --></p>`,
			contains: []string{"Keep"},
			excludes: []string{"tracking id", "<!--"},
		},
		{
			name:     "decodes escaped newlines and quotes",
			html:     "<p>Hello\\nWorld</p><p>He said \\\"hi\\\"</p>",
			contains: []string{"Hello", "World"},
			excludes: []string{"\\n", "\\\""},
		},
		{
			name:     "strips outlook conditional blocks",
			html:     `<!--[if mso]><table><tr><td>MSO only</td></tr></table><![endif]--><p>Everyone</p>`,
			contains: []string{"Everyone"},
			excludes: []string{"MSO only"},
		},
		{
			name:     "strips bare downlevel conditional spans",
			html:     `<![if !supportLists]>bullet markup<![endif]><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"bullet markup"},
		},
		{
			name:     "unwraps layout table",
			html:     `<table><tr><td>Cell</td></tr></table>`,
			contains: []string{"Cell"},
			excludes: []string{"<table", "<td", "<tr"},
		},
		{
			name:     "keeps data table with th",
			html:     `<table><thead><tr><th>Name</th></tr></thead></table>`,
			contains: []string{"<table", "Name", "<th"},
		},
		{
			name:     "keeps table with grid role",
			html:     `<table role="grid"><tr><td>42</td></tr></table>`,
			contains: []string{"<table", "42"},
		},
		{
			name:     "keeps table with table role",
			html:     `<table role="table"><tr><td>42</td></tr></table>`,
			contains: []string{"<table", "42"},
		},
		{
			name:     "unwraps nested layout tables innermost first",
			html:     `<table><tr><td><table><tr><td>Deep</td></tr></table></td></tr></table>`,
			contains: []string{"Deep"},
			excludes: []string{"<table", "<td"},
		},
		{
			name:     "keeps data table nested in layout table",
			html:     `<table><tr><td><table role="grid"><tr><td>G</td></tr></table></td></tr></table>`,
			contains: []string{`<table role="grid">`, "G"},
		},
		{
			name:     "layout wrapper with header cells counts as data",
			html:     `<table><tr><td><table><tr><th>H</th></tr></table></td></tr></table>`,
			contains: []string{"<table", "<th", "H"},
		},
		{
			name:     "empty layout cells contribute nothing",
			html:     `<table><tr><td></td><td>Only</td><td>  </td></tr></table>`,
			contains: []string{"Only"},
			excludes: []string{"<table"},
		},
		{
			name:     "unwraps orphaned center after table unwrap",
			html:     `<table><tr><td><center>Mid</center></td></tr></table>`,
			contains: []string{"Mid"},
			excludes: []string{"<center", "<table"},
		},
		{
			name:     "keeps blockquotes by default",
			html:     `<blockquote>Earlier reply</blockquote><p>New text</p>`,
			contains: []string{"Earlier reply", "New text"},
		},
		{
			name:     "strips blockquotes when configured",
			html:     `<blockquote>Earlier reply</blockquote><p>New text</p>`,
			config:   mergeDefault(&Config{StripBlockquotes: true}),
			contains: []string{"New text"},
			excludes: []string{"Earlier reply"},
		},
		{
			name:     "tolerates tag soup",
			html:     `<div><p>Unclosed<table><tr><td>Cell<div></table>`,
			contains: []string{"Unclosed", "Cell"},
			excludes: []string{"<table"},
		},
		{
			name: "empty input",
			html: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)
			got := s.Sanitize(tt.html)

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

// mergeDefault overlays opts on the default configuration.
func mergeDefault(opts *Config) *Config {
	return DefaultConfig().Merge(opts)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`<div style="display:none">Hidden</div><p>Visible</p>`,
		`<table><tr><td>Cell</td></tr></table>`,
		`<table><thead><tr><th>Name</th></tr></thead><tbody><tr><td>v</td></tr></tbody></table>`,
		`<table><tr><td><table><tr><td>Deep</td></tr></table></td></tr></table>`,
		`<!--[if mso]>x<![endif]--><p class="a" style="b">T&amp;C</p><!-- c -->`,
		`<p>line one</p>` + "\n\n\n\n\n" + `<p>line two</p>`,
		`plain text, no markup at all`,
	}

	s := New(nil)
	for _, input := range inputs {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q:\nfirst:  %q\nsecond: %q", input, once, twice)
		}
	}
}

func TestSanitizeWithStats(t *testing.T) {
	s := New(nil)
	result := s.SanitizeWithStats(`<script>x</script><div style="display:none">h</div><img width="1" height="1"><table><tr><td>c</td></tr></table><p style="m">t</p>`)

	if result.Stats.ElementsRemoved["script"] != 1 {
		t.Errorf("expected 1 script removal, got %d", result.Stats.ElementsRemoved["script"])
	}
	if result.Stats.HiddenElementRemovals != 1 {
		t.Errorf("expected 1 hidden removal, got %d", result.Stats.HiddenElementRemovals)
	}
	if result.Stats.TrackingPixelRemovals != 1 {
		t.Errorf("expected 1 pixel removal, got %d", result.Stats.TrackingPixelRemovals)
	}
	if result.Stats.TablesUnwrapped != 1 {
		t.Errorf("expected 1 table unwrapped, got %d", result.Stats.TablesUnwrapped)
	}
	if result.Stats.AttributesRemoved == 0 {
		t.Error("expected attribute removals to be counted")
	}
	if result.Stats.InputBytes == 0 || result.Stats.OutputBytes == 0 {
		t.Error("expected byte counts to be recorded")
	}
}

func TestSanitizeConcurrent(t *testing.T) {
	s := New(nil)
	input := `<script>x</script><div style="display:none">h</div><p>Visible</p>`
	want := s.Sanitize(input)

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				results[i] = s.Sanitize(input)
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("worker %d: got %q, want %q", i, got, want)
		}
	}
}

func TestCollapseBlankLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no blanks", "a\nb", "a\nb"},
		{"one blank kept", "a\n\nb", "a\n\nb"},
		{"two blanks kept", "a\n\n\nb", "a\n\n\nb"},
		{"three blanks collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"many blanks collapsed", "a\n\n\n\n\n\n\nb", "a\n\nb"},
		{"whitespace-only lines count as blank", "a\n \n\t\n  \n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collapseBlankLines(tt.in); got != tt.want {
				t.Errorf("collapseBlankLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
