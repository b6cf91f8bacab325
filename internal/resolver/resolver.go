// Package resolver finds the download link aligned with a named banner in a
// two-row table: the banner row and the link row are correlated by cell index.
package resolver

import (
	"iter"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultLinkClass is the class of the element wrapping the anchor in a link cell.
const DefaultLinkClass = "link"

// Resolver holds the class names that locate the table, the banner and the link wrapper.
type Resolver struct {
	TableClass  string
	BannerClass string
	LinkClass   string
}

// New returns a Resolver. An empty linkClass means DefaultLinkClass.
func New(tableClass, bannerClass, linkClass string) *Resolver {
	if linkClass == "" {
		linkClass = DefaultLinkClass
	}
	return &Resolver{
		TableClass:  tableClass,
		BannerClass: bannerClass,
		LinkClass:   linkClass,
	}
}

// Resolve returns the href of the anchor below the configured banner.
func (r *Resolver) Resolve(doc *html.Node) (string, error) {
	log.Debug().
		Str("table_class", r.TableClass).
		Str("banner_class", r.BannerClass).
		Msg("Resolving link")

	href, err := resolve(doc, r.TableClass, r.BannerClass, r.LinkClass)
	if err != nil {
		return "", err
	}

	log.Debug().Str("href", href).Msg("Resolved link")
	return href, nil
}

// ResolveLink returns the href of the link cell aligned with the first banner
// cell carrying targetClass, inside the table marked by tableClass.
func ResolveLink(doc *html.Node, tableClass, targetClass string) (string, error) {
	return resolve(doc, tableClass, targetClass, DefaultLinkClass)
}

// TargetIndices yields, in order, the index of every banner cell matching
// target. The sequence can be ranged over any number of times.
func TargetIndices(cells []BannerCell, target string) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, c := range cells {
			if IsTargetBanner(c, target) && !yield(i) {
				return
			}
		}
	}
}

// FindTargetIndex returns the first index yielded by TargetIndices.
func FindTargetIndex(cells []BannerCell, target string) (int, error) {
	for i := range TargetIndices(cells, target) {
		return i, nil
	}
	return -1, &NotFoundError{BannerClass: target, Banners: len(cells)}
}

func resolve(doc *html.Node, tableClass, targetClass, linkClass string) (string, error) {
	table := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, tableClass)
	})
	if table == nil {
		return "", &StructureError{TableClass: tableClass, Err: ErrNoTable}
	}

	rows := findAll(table, atom.Tr)
	if len(rows) != 2 {
		return "", newStructureError(tableClass, ErrRowCount, "found %d rows", len(rows))
	}

	banners := BannerCells(findAll(rows[0], atom.Td))
	links := findAll(rows[1], atom.Td)

	index, err := FindTargetIndex(banners, targetClass)
	if err != nil {
		return "", err
	}
	log.Debug().
		Int("index", index).
		Int("banners", len(banners)).
		Int("links", len(links)).
		Msg("Matched banner")

	if len(links) < index+1 {
		return "", newStructureError(tableClass, ErrShortLinkRow,
			"banner at index %d, link row has %d cells", index, len(links))
	}

	wrapper := findFirst(links[index], func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, linkClass)
	})
	if wrapper == nil {
		return "", newStructureError(tableClass, ErrMissingLink, "no div.%s in link cell %d", linkClass, index)
	}
	anchor := findFirst(wrapper, func(n *html.Node) bool {
		return n.DataAtom == atom.A
	})
	if anchor == nil {
		return "", newStructureError(tableClass, ErrMissingLink, "no anchor in div.%s of link cell %d", linkClass, index)
	}
	href, ok := attr(anchor, "href")
	if !ok {
		return "", newStructureError(tableClass, ErrMissingLink, "anchor in link cell %d has no href", index)
	}
	return href, nil
}

// findFirst returns the first descendant of root, in document order, matching fn.
// root itself is not considered.
func findFirst(root *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && fn(c) {
			return c
		}
		if found := findFirst(c, fn); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant element of root with the given tag.
func findAll(root *html.Node, tag atom.Atom) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == tag {
				results = append(results, c)
			}
			walk(c)
		}
	}
	walk(root)
	return results
}

func hasClass(n *html.Node, class string) bool {
	raw, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(raw) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
