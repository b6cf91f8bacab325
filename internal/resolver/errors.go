package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTable indicates no table carries the marker class.
	ErrNoTable = errors.New("marker table not found")

	// ErrRowCount indicates the table does not have exactly a banner row and a link row.
	ErrRowCount = errors.New("table does not have exactly two rows")

	// ErrShortLinkRow indicates the link row has no cell below the matched banner.
	ErrShortLinkRow = errors.New("forward link not found below banner")

	// ErrMissingLink indicates the link cell lacks the link element, its anchor or the href.
	ErrMissingLink = errors.New("link element missing")
)

// StructureError reports a page whose table layout does not match the expected shape.
type StructureError struct {
	TableClass string
	Detail     string
	Err        error
}

func (e *StructureError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected structure in table %q: %v", e.TableClass, e.Err)
	}
	return fmt.Sprintf("unexpected structure in table %q: %v (%s)", e.TableClass, e.Err, e.Detail)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no banner cell carries the target class.
type NotFoundError struct {
	BannerClass string
	Banners     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no banner with class %q among %d banner cells", e.BannerClass, e.Banners)
}

func newStructureError(tableClass string, err error, format string, args ...any) *StructureError {
	return &StructureError{
		TableClass: tableClass,
		Detail:     fmt.Sprintf(format, args...),
		Err:        err,
	}
}
