package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type fixtureItem struct {
	title  string
	year   string
	href   string
	poster string
}

// listingPage renders a keyword search page: one header and one poster
// container per item plus a trailing "Recently viewed" header.
func listingPage(items []fixtureItem) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="lister-list">`)
	for i, it := range items {
		fmt.Fprintf(&b, `
<div class="lister-item mode-advanced">
  <div class="lister-item-image ribbonize" data-tconst="tt%d">
    <a href="%s"><img alt="%s" class="loadlate" loadlate="%s" src="https://m.media-amazon.com/images/G/01/imdb/images/nopicture/large/film.png"></a>
  </div>
  <div class="lister-item-content">
    <h3 class="lister-item-header">
      <span class="lister-item-index unbold text-primary">%d.</span>
      <a href="%s"> %s </a>
      <span class="lister-item-year text-muted unbold">%s</span>
    </h3>
  </div>
</div>`, i, it.href, it.title, it.poster, i+1, it.href, it.title, it.year)
	}
	b.WriteString(`</div><h3 class="recently-viewed">Recently Viewed</h3></body></html>`)
	return b.String()
}

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// fakeFetcher serves prepared documents by address and records every call.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchPage(_ context.Context, address string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	html, ok := f.pages[address]
	err := f.errs[address]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		html = "<html><body></body></html>"
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// listingServer serves pages[n-1] for ?page=n and counts requests.
func listingServer(t *testing.T, pages []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var page int
		if _, err := fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page); err != nil || page < 1 || page > len(pages) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pages[page-1]))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}
