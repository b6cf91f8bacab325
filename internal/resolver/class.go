package resolver

import (
	"strings"

	"golang.org/x/net/html"
)

// ClassValue is the class attribute of a banner cell. It is either a Single
// class name or a Multiple set of names.
type ClassValue interface {
	has(name string) bool
}

// Single is a class attribute holding exactly one name.
type Single string

func (s Single) has(name string) bool {
	return string(s) == name
}

// Multiple is a class attribute holding several names.
type Multiple map[string]struct{}

func (m Multiple) has(name string) bool {
	_, ok := m[name]
	return ok
}

// BannerCell is one cell of the banner row. A nil Class means the cell has
// no class attribute.
type BannerCell struct {
	Class ClassValue
	Node  *html.Node
}

// ParseClassValue splits a raw class attribute into a ClassValue.
// Blank attributes yield nil.
func ParseClassValue(raw string) ClassValue {
	fields := strings.Fields(raw)
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return Single(fields[0])
	}
	set := make(Multiple, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// BannerCells converts the td cells of a row into banner cells.
func BannerCells(cells []*html.Node) []BannerCell {
	out := make([]BannerCell, 0, len(cells))
	for _, c := range cells {
		var class ClassValue
		if raw, ok := attr(c, "class"); ok {
			class = ParseClassValue(raw)
		}
		out = append(out, BannerCell{Class: class, Node: c})
	}
	return out
}

// IsTargetBanner reports whether the cell's class equals target or, for a
// multi-valued class, contains it.
func IsTargetBanner(cell BannerCell, target string) bool {
	if cell.Class == nil {
		return false
	}
	switch v := cell.Class.(type) {
	case Single:
		return v.has(target)
	case Multiple:
		return v.has(target)
	default:
		return false
	}
}
