package resolver

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	return doc
}

func linkCell(href string) string {
	return fmt.Sprintf(`<td><div class="link"><a href="%s">Download</a></div></td>`, href)
}

func appsTable(banners, links string) string {
	return `<html><body><table class="apps-table">` +
		`<tr>` + banners + `</tr>` +
		`<tr>` + links + `</tr>` +
		`</table></body></html>`
}

func TestResolveLinkExample(t *testing.T) {
	doc := parseDoc(t, appsTable(
		`<td class="other"></td><td class="visual-studio"></td>`,
		linkCell("https://example.com/other")+linkCell("https://example.com/vs"),
	))

	href, err := ResolveLink(doc, "apps-table", "visual-studio")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if href != "https://example.com/vs" {
		t.Errorf("Expected 'https://example.com/vs', got '%s'", href)
	}
}

func TestResolveLinkEveryPosition(t *testing.T) {
	const n = 5
	for k := 0; k < n; k++ {
		var banners, links strings.Builder
		for i := 0; i < n; i++ {
			if i == k {
				banners.WriteString(`<td class="banner visual-studio"></td>`)
			} else {
				banners.WriteString(fmt.Sprintf(`<td class="app-%d"></td>`, i))
			}
			links.WriteString(linkCell(fmt.Sprintf("https://example.com/%d", i)))
		}
		doc := parseDoc(t, appsTable(banners.String(), links.String()))

		href, err := ResolveLink(doc, "apps-table", "visual-studio")
		if err != nil {
			t.Fatalf("k=%d: expected no error, got %v", k, err)
		}
		want := fmt.Sprintf("https://example.com/%d", k)
		if href != want {
			t.Errorf("k=%d: expected '%s', got '%s'", k, want, href)
		}
	}
}

func TestResolveLinkFirstMatchWins(t *testing.T) {
	doc := parseDoc(t, appsTable(
		`<td></td><td class="visual-studio"></td><td class="visual-studio"></td>`,
		linkCell("a")+linkCell("b")+linkCell("c"),
	))

	href, err := ResolveLink(doc, "apps-table", "visual-studio")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if href != "b" {
		t.Errorf("Expected 'b', got '%s'", href)
	}
}

func TestResolveLinkIdempotent(t *testing.T) {
	doc := parseDoc(t, appsTable(`<td class="visual-studio"></td>`, linkCell("https://example.com/vs")))

	first, err := ResolveLink(doc, "apps-table", "visual-studio")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := ResolveLink(doc, "apps-table", "visual-studio")
	if err != nil {
		t.Fatalf("Expected no error on second call, got %v", err)
	}
	if first != second {
		t.Errorf("Expected identical results, got '%s' and '%s'", first, second)
	}
}

func TestResolveLinkNotFound(t *testing.T) {
	doc := parseDoc(t, appsTable(
		`<td class="other"></td><td></td>`,
		linkCell("a")+linkCell("b"),
	))

	_, err := ResolveLink(doc, "apps-table", "visual-studio")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if notFound.Banners != 2 {
		t.Errorf("Expected 2 banners, got %d", notFound.Banners)
	}
}

func TestResolveLinkStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "no marker table",
			src:  `<html><body><table class="other"><tr><td class="visual-studio"></td></tr><tr>` + linkCell("a") + `</tr></table></body></html>`,
			want: ErrNoTable,
		},
		{
			name: "one row",
			src:  `<table class="apps-table"><tr><td class="visual-studio"></td></tr></table>`,
			want: ErrRowCount,
		},
		{
			name: "three rows",
			src:  `<table class="apps-table"><tr><td class="visual-studio"></td></tr><tr>` + linkCell("a") + `</tr><tr><td></td></tr></table>`,
			want: ErrRowCount,
		},
		{
			name: "short link row",
			src:  appsTable(`<td></td><td class="visual-studio"></td>`, linkCell("a")),
			want: ErrShortLinkRow,
		},
		{
			name: "missing link div",
			src:  appsTable(`<td class="visual-studio"></td>`, `<td><a href="x">x</a></td>`),
			want: ErrMissingLink,
		},
		{
			name: "missing anchor",
			src:  appsTable(`<td class="visual-studio"></td>`, `<td><div class="link">none</div></td>`),
			want: ErrMissingLink,
		},
		{
			name: "anchor without href",
			src:  appsTable(`<td class="visual-studio"></td>`, `<td><div class="link"><a>x</a></div></td>`),
			want: ErrMissingLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveLink(parseDoc(t, tt.src), "apps-table", "visual-studio")
			var structErr *StructureError
			if !errors.As(err, &structErr) {
				t.Fatalf("Expected StructureError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestResolverCustomLinkClass(t *testing.T) {
	doc := parseDoc(t, appsTable(
		`<td class="visual-studio"></td>`,
		`<td><div class="download"><a href="https://example.com/dl">x</a></div></td>`,
	))

	r := New("apps-table", "visual-studio", "download")
	href, err := r.Resolve(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if href != "https://example.com/dl" {
		t.Errorf("Expected 'https://example.com/dl', got '%s'", href)
	}

	if New("apps-table", "visual-studio", "").LinkClass != DefaultLinkClass {
		t.Errorf("Expected empty link class to default to %q", DefaultLinkClass)
	}
}

func TestIsTargetBanner(t *testing.T) {
	tests := []struct {
		name string
		cell BannerCell
		want bool
	}{
		{"single match", BannerCell{Class: Single("visual-studio")}, true},
		{"single mismatch", BannerCell{Class: Single("other")}, false},
		{"multiple contains", BannerCell{Class: ParseClassValue("banner visual-studio wide")}, true},
		{"multiple without", BannerCell{Class: ParseClassValue("banner wide")}, false},
		{"absent", BannerCell{}, false},
		{"substring only", BannerCell{Class: Single("visual-studio-code")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTargetBanner(tt.cell, "visual-studio"); got != tt.want {
				t.Errorf("IsTargetBanner() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestParseClassValue(t *testing.T) {
	if v := ParseClassValue("   "); v != nil {
		t.Errorf("Expected nil for blank class, got %#v", v)
	}
	if v, ok := ParseClassValue(" one ").(Single); !ok || v != "one" {
		t.Errorf("Expected Single(\"one\"), got %#v", v)
	}
	m, ok := ParseClassValue("a b a").(Multiple)
	if !ok {
		t.Fatalf("Expected Multiple for two names")
	}
	if len(m) != 2 {
		t.Errorf("Expected 2 distinct names, got %d", len(m))
	}
}

func TestTargetIndicesRestartable(t *testing.T) {
	cells := []BannerCell{
		{Class: Single("visual-studio")},
		{},
		{Class: ParseClassValue("x visual-studio")},
	}
	seq := TargetIndices(cells, "visual-studio")

	for pass := 0; pass < 2; pass++ {
		var got []int
		for i := range seq {
			got = append(got, i)
		}
		if len(got) != 2 || got[0] != 0 || got[1] != 2 {
			t.Errorf("pass %d: expected [0 2], got %v", pass, got)
		}
	}
}

func TestFindTargetIndexEmpty(t *testing.T) {
	index, err := FindTargetIndex(nil, "visual-studio")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if index != -1 {
		t.Errorf("Expected index -1, got %d", index)
	}
}
