// Package pagination splits ordered listings into numbered pages.
//
// It follows the forgiving lookup used by the site's templates: a page number
// that is not an integer resolves to the first page, one out of range (below 1
// or past the end) resolves to the last page. An empty listing still has a
// single empty page.
package pagination

import (
	"math"
	"strconv"

	"gorm.io/gorm"
)

// Page sizes used by the listings.
const (
	PostsPerPage  = 10
	GroupsPerPage = 10
	UsersPerPage  = 12
)

type Paginator struct {
	Count    int64
	PerPage  int
	NumPages int
}

func New(count int64, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	numPages := int(math.Ceil(float64(count) / float64(perPage)))
	if numPages == 0 {
		numPages = 1
	}
	return &Paginator{Count: count, PerPage: perPage, NumPages: numPages}
}

// Page resolves a raw "page" query value.
func (p *Paginator) Page(raw string) Page {
	number, err := strconv.Atoi(raw)
	if err != nil {
		number = 1
	}
	if number < 1 || number > p.NumPages {
		number = p.NumPages
	}
	return Page{Number: number, paginator: p}
}

type Page struct {
	Number    int
	paginator *Paginator
}

func (p Page) NumPages() int  { return p.paginator.NumPages }
func (p Page) Count() int64   { return p.paginator.Count }
func (p Page) PerPage() int   { return p.paginator.PerPage }
func (p Page) Offset() int    { return (p.Number - 1) * p.paginator.PerPage }
func (p Page) Limit() int     { return p.paginator.PerPage }
func (p Page) HasNext() bool  { return p.Number < p.paginator.NumPages }
func (p Page) HasOther() bool { return p.HasNext() || p.HasPrevious() }

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) NextNumber() int {
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	return p.Number - 1
}

// StartIndex is the 1-based index of the first item on the page, 0 when the
// listing is empty.
func (p Page) StartIndex() int64 {
	if p.paginator.Count == 0 {
		return 0
	}
	return int64(p.Offset()) + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (p Page) EndIndex() int64 {
	if p.Number == p.paginator.NumPages {
		return p.paginator.Count
	}
	return int64(p.Number * p.paginator.PerPage)
}

// Len is the number of items on the page.
func (p Page) Len() int {
	if p.paginator.Count == 0 {
		return 0
	}
	return int(p.EndIndex() - p.StartIndex() + 1)
}

// Range lists every page number, for the page links.
func (p Page) Range() []int {
	pages := make([]int, p.paginator.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Apply restricts a query to the rows of this page.
func (p Page) Apply(tx *gorm.DB) *gorm.DB {
	return tx.Offset(p.Offset()).Limit(p.Limit())
}

// Paginate counts the rows matched by query and resolves the requested page.
// query must not carry ordering or limits yet.
func Paginate(query *gorm.DB, perPage int, raw string) (Page, error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return Page{}, err
	}
	return New(count, perPage).Page(raw), nil
}
