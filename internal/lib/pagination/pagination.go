// Package pagination implements page-number pagination with a client
// selectable page size, rendered as {count, next, previous, results}.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/deppfellow/menu-api/internal/errs"
)

const (
	PageParam     = "page"
	PageSizeParam = "page_size"
)

// SmallPageSize is both the default and the maximum page size of the
// reduced item listing.
const SmallPageSize = 2

// Paginator sizes pages. A requested page_size is clamped to MaxSize.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

func New(defaultSize, maxSize int) Paginator {
	if maxSize > 0 && defaultSize > maxSize {
		defaultSize = maxSize
	}
	return Paginator{DefaultSize: defaultSize, MaxSize: maxSize}
}

// Request is a resolved page selection.
type Request struct {
	Page int
	Size int
}

// Limit and Offset translate the request for the store.
func (r Request) Limit() int  { return r.Size }
func (r Request) Offset() int { return (r.Page - 1) * r.Size }

// Resolve applies defaults and the size cap to the raw query values.
// Zero or negative values mean "not given".
func (p Paginator) Resolve(page, size int) Request {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = p.DefaultSize
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return Request{Page: page, Size: size}
}

// NumPages is the page count for count results. An empty result set still
// has one (empty) page.
func (r Request) NumPages(count int) int {
	if count == 0 || r.Size < 1 {
		return 1
	}
	return (count + r.Size - 1) / r.Size
}

// ErrInvalidPage is returned for pages past the last one.
var ErrInvalidPage = errs.NewNotFoundError("Invalid page.", true, nil)

// Check rejects pages beyond the last page.
func (r Request) Check(count int) error {
	if r.Page > r.NumPages(count) {
		return ErrInvalidPage
	}
	return nil
}

// Page is the response body of a paginated listing.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the page body. base is the absolute request URL; next and
// previous keep its query string and only change the page parameter. The
// link back to the first page drops the page parameter entirely.
func NewPage[T any](base *url.URL, r Request, count int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}

	page := Page[T]{Count: count, Results: results}
	if r.Page < r.NumPages(count) {
		page.Next = link(base, r.Page+1)
	}
	if r.Page > 1 {
		page.Previous = link(base, r.Page-1)
	}
	return page
}

func link(base *url.URL, page int) *string {
	if base == nil {
		return nil
	}

	u := *base
	q := u.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	s := u.String()
	return &s
}
