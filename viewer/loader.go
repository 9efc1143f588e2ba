package viewer

import (
	"context"
	"sync"

	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
)

// PageSource returns one page of the listing
type PageSource interface {
	ListPage(ctx context.Context, page, pageSize int) (*fs.Page, error)
}

// Loader walks the listing page by page into a DisplayList.
// It starts at page 1 with one assumed page; the first response sets the real count.
type Loader struct {
	source   PageSource
	list     *DisplayList
	pageSize int

	loading sync.Mutex // held for the duration of one fetch

	mu          sync.Mutex
	currentPage int
	totalPages  int
}

// NewLoader creates a loader that appends into list
func NewLoader(source PageSource, list *DisplayList, pageSize int) *Loader {
	return &Loader{
		source:      source,
		list:        list,
		pageSize:    pageSize,
		currentPage: 1,
		totalPages:  1,
	}
}

// LoadNext fetches the next page if no fetch is in flight and pages remain.
// Returns true when a page was fetched. A failed fetch leaves the page
// counter untouched so the next call retries the same page.
func (l *Loader) LoadNext(ctx context.Context) (bool, error) {
	if !l.loading.TryLock() {
		return false, nil
	}
	defer l.loading.Unlock()

	l.mu.Lock()
	page, total := l.currentPage, l.totalPages
	l.mu.Unlock()

	if page > total {
		return false, nil
	}

	result, err := l.source.ListPage(ctx, page, l.pageSize)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalPages = result.TotalPages
	if len(result.Images) > 0 {
		l.list.Append(result.Images...)
		l.currentPage++
	}
	return true, nil
}

// Done reports whether every page has been loaded
func (l *Loader) Done() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPage > l.totalPages
}

// CurrentPage returns the next page to fetch
func (l *Loader) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPage
}

// TotalPages returns the page count from the last response
func (l *Loader) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPages
}
