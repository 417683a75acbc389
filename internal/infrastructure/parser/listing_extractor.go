package parser

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/ports"
	"ListingCrawler/internal/scanner"
)

// MismatchPolicy decides what happens when header and poster counts differ.
type MismatchPolicy string

const (
	// MismatchStrict fails the extraction on the first page whose counts differ.
	MismatchStrict MismatchPolicy = "strict"
	// MismatchTruncate pairs positionally and drops the unmatched tail.
	MismatchTruncate MismatchPolicy = "truncate"
)

var yearExpr = regexp.MustCompile(`[0-9]{4}`)

// FirstFourDigitRun returns the leftmost run of four ASCII digits in s.
func FirstFourDigitRun(s string) (string, bool) {
	match := yearExpr.FindString(s)
	return match, match != ""
}

// Extractor turns paginated listing pages into listing records.
type Extractor struct {
	fetcher ports.PageFetcher
	profile scanner.Profile
	policy  MismatchPolicy
	logger  *slog.Logger
}

// NewExtractor wires a fetcher with a site profile; policy defaults to strict.
func NewExtractor(fetcher ports.PageFetcher, profile scanner.Profile, policy MismatchPolicy, logger *slog.Logger) *Extractor {
	if policy == "" {
		policy = MismatchStrict
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{fetcher: fetcher, profile: profile, policy: policy, logger: logger}
}

// ExtractListings crawls maxPages pages starting at start and returns the
// listings in page order.
func (e *Extractor) ExtractListings(ctx context.Context, start string, maxPages int) ([]domain.Listing, error) {
	result, err := e.Extract(ctx, start, maxPages)
	if err != nil {
		return nil, err
	}
	return result.Listings, nil
}

// Extract is ExtractListings that also reports how many pages were read.
func (e *Extractor) Extract(ctx context.Context, start string, maxPages int) (domain.Crawl, error) {
	pages, err := CollectPages(ctx, e.fetcher, start, maxPages)
	if err != nil {
		return domain.Crawl{}, err
	}

	var (
		headers []*goquery.Selection
		posters []*goquery.Selection
	)
	for page, doc := range pages.All() {
		pageHeaders := e.itemHeaders(doc)
		pagePosters := e.posterContainers(doc)

		e.logger.Debug("page scanned", "page", page, "headers", len(pageHeaders), "posters", len(pagePosters))

		if len(pageHeaders) != len(pagePosters) && e.policy == MismatchStrict {
			return domain.Crawl{}, &ExtractionMismatchError{Page: page, Headers: len(pageHeaders), Posters: len(pagePosters)}
		}

		headers = append(headers, pageHeaders...)
		posters = append(posters, pagePosters...)
	}
	if err := pages.Err(); err != nil {
		return domain.Crawl{}, fmt.Errorf("collect pages: %w", err)
	}

	count := min(len(headers), len(posters))
	if len(headers) != len(posters) {
		e.logger.Warn("header and poster counts differ, dropping unmatched tail",
			"headers", len(headers),
			"posters", len(posters),
			"dropped", max(len(headers), len(posters))-count,
		)
	}

	listings := make([]domain.Listing, 0, count)
	for i := 0; i < count; i++ {
		listing := e.parseHeader(headers[i])
		listing.PosterLink = e.parsePoster(posters[i])
		listings = append(listings, listing)
	}

	return domain.Crawl{Listings: listings, Pages: pages.Page()}, nil
}

// itemHeaders returns the header elements of doc minus the trailing banners.
func (e *Extractor) itemHeaders(doc *goquery.Document) []*goquery.Selection {
	all := doc.Find(e.profile.HeaderSelector)
	keep := all.Length() - e.profile.TrailingHeaders
	if keep <= 0 {
		return nil
	}
	return splitSelection(all.Slice(0, keep))
}

func (e *Extractor) posterContainers(doc *goquery.Document) []*goquery.Selection {
	return splitSelection(doc.Find(e.profile.PosterSelector))
}

func (e *Extractor) parseHeader(header *goquery.Selection) domain.Listing {
	anchor := header.Find(e.profile.TitleSelector).First()
	href, _ := anchor.Attr("href")

	year, ok := FirstFourDigitRun(header.Find(e.profile.YearSelector).First().Text())
	if !ok {
		year = domain.UnknownYear
	}

	return domain.Listing{
		Title:      strings.TrimSpace(anchor.Text()),
		Year:       year,
		DetailLink: e.profile.BaseURL + strings.TrimLeft(href, "/"),
	}
}

func (e *Extractor) parsePoster(container *goquery.Selection) string {
	link, _ := container.Find(e.profile.ImageSelector).First().Attr(e.profile.PosterAttr)
	return link
}

func splitSelection(sel *goquery.Selection) []*goquery.Selection {
	items := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		items = append(items, s)
	})
	return items
}
