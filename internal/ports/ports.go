package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ListingCrawler/internal/domain"
)

// PageFetcher retrieves one listing page and parses it into a queryable document.
type PageFetcher interface {
	FetchPage(ctx context.Context, address string) (*goquery.Document, error)
}

// ListingSource crawls the configured targets one at a time.
type ListingSource interface {
	Targets() []string
	FetchTarget(ctx context.Context, target string) (domain.Crawl, error)
}

// ListingRepository persists listings for deduplication and history.
type ListingRepository interface {
	Upsert(ctx context.Context, source string, listings []domain.Listing) (created, updated int, err error)
	List(ctx context.Context, source string) ([]domain.StoredListing, error)
}

// ListingWriter renders the listings of a run to an output stream.
type ListingWriter interface {
	Write(listings []domain.Listing) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
