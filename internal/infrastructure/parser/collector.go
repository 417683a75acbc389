package parser

import (
	"context"
	"fmt"
	"iter"

	"github.com/PuerkitoBio/goquery"

	"ListingCrawler/internal/ports"
)

// PageIterator lazily fetches pages 1..maxPages of a templated listing, one at
// a time. It is single-pass and not safe for concurrent use.
type PageIterator struct {
	ctx      context.Context
	fetcher  ports.PageFetcher
	start    string
	maxPages int

	page int
	doc  *goquery.Document
	err  error
	done bool
}

// CollectPages validates the start address and returns an iterator over its
// first maxPages pages. Nothing is fetched until Next is called.
func CollectPages(ctx context.Context, fetcher ports.PageFetcher, start string, maxPages int) (*PageIterator, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("max pages %d: %w", maxPages, ErrInvalidPage)
	}
	if _, err := BuildPageAddress(start, 1); err != nil {
		return nil, err
	}

	return &PageIterator{
		ctx:      ctx,
		fetcher:  fetcher,
		start:    start,
		maxPages: maxPages,
	}, nil
}

// Next fetches the following page. It returns false once maxPages documents
// were produced or a fetch failed; see Err.
func (it *PageIterator) Next() bool {
	if it.done {
		return false
	}
	if it.page >= it.maxPages {
		it.finish(nil)
		return false
	}

	page := it.page + 1
	address, err := BuildPageAddress(it.start, page)
	if err != nil {
		it.finish(err)
		return false
	}

	doc, err := it.fetcher.FetchPage(it.ctx, address)
	if err != nil {
		it.finish(fmt.Errorf("page %d: %w", page, err))
		return false
	}

	it.page = page
	it.doc = doc
	return true
}

// Document returns the page produced by the last successful Next.
func (it *PageIterator) Document() *goquery.Document {
	return it.doc
}

// Page returns the 1-based number of the current document.
func (it *PageIterator) Page() int {
	return it.page
}

// Err returns the error that stopped iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// All ranges over the remaining pages. Breaking out of the loop performs no
// further fetch; after exhaustion it yields nothing.
func (it *PageIterator) All() iter.Seq2[int, *goquery.Document] {
	return func(yield func(int, *goquery.Document) bool) {
		for it.Next() {
			if !yield(it.page, it.doc) {
				return
			}
		}
	}
}

func (it *PageIterator) finish(err error) {
	it.done = true
	it.doc = nil
	it.err = err
}
