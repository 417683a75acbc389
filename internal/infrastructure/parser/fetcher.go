package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"ListingCrawler/internal/ports"
)

// Fetcher performs a single GET per page and parses the body leniently.
type Fetcher struct {
	client *resty.Client
	logger *slog.Logger
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// NewFetcher wraps a copy of an HTTP client; redirects are returned to the
// caller, not followed.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	// resty installs its redirect policy on the client; keep the caller's intact.
	copied := http.Client{}
	if client != nil {
		copied = *client
	}
	client = &copied
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rc := resty.NewWithClient(client).
		SetRetryCount(0).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Fetcher{client: rc, logger: logger}
}

// FetchPage retrieves address and returns its parsed document.
func (f *Fetcher) FetchPage(ctx context.Context, address string) (*goquery.Document, error) {
	resp, err := f.client.R().SetContext(ctx).Get(address)
	if err != nil {
		return nil, &FetchError{Address: address, Err: err}
	}

	f.logger.Debug("page fetched", "address", address, "status", resp.StatusCode(), "bytes", len(resp.Body()))

	if !resp.IsSuccess() {
		err := fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
		if location := resp.Header().Get("Location"); location != "" {
			err = fmt.Errorf("%w: %s (redirect to %s)", ErrUnexpectedStatus, resp.Status(), location)
		}
		return nil, &FetchError{Address: address, StatusCode: resp.StatusCode(), Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &FetchError{Address: address, StatusCode: resp.StatusCode(), Err: fmt.Errorf("parse document: %w", err)}
	}

	return doc, nil
}
