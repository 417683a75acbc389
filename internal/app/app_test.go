package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ListingCrawler/internal/config"
	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/infrastructure/storage"
)

const pageTemplate = `<html><body>
<div class="lister-item-image ribbonize"><img loadlate="https://img/p%[1]s.jpg"></div>
<h3><a href="/title/tt%[1]s/">Film %[1]s</a><span class="lister-item-year text-muted unbold">(200%[1]s)</span></h3>
<h3>Recently Viewed</h3>
</body></html>`

func crawlServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, pageTemplate, r.URL.Query().Get("page"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srv *httptest.Server) config.Config {
	cfg := config.Default()
	cfg.Targets = []config.TargetConfig{{
		Name:     "films",
		StartURL: srv.URL + "/search/keyword/?keywords=rock&page=1&sort=moviemeter,asc",
		MaxPages: 2,
	}}
	cfg.Output.Format = "json"
	return cfg
}

func TestApplicationRunRendersAndStores(t *testing.T) {
	t.Parallel()

	srv := crawlServer(t)
	cfg := testConfig(srv)
	dbPath := filepath.Join(t.TempDir(), "listings.db")
	cfg.Storage = config.StorageConfig{Driver: "sqlite", DSN: dbPath}

	var stdout bytes.Buffer
	application, err := New(context.Background(), cfg, nil, &stdout)
	require.NoError(t, err)

	summaries, err := application.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, application.Close())

	assert.Equal(t, []domain.RunSummary{{Target: "films", Pages: 2, Listings: 2, New: 2}}, summaries)

	var listings []domain.Listing
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &listings))
	assert.Equal(t, []domain.Listing{
		{Title: "Film 1", Year: "2001", DetailLink: "https://www.imdb.com/title/tt1/", PosterLink: "https://img/p1.jpg"},
		{Title: "Film 2", Year: "2002", DetailLink: "https://www.imdb.com/title/tt2/", PosterLink: "https://img/p2.jpg"},
	}, listings)

	repo, err := storage.Open(context.Background(), "sqlite", dbPath)
	require.NoError(t, err)
	defer repo.Close()
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestApplicationWritesOutputFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(crawlServer(t))
	cfg.Output.Format = "lines"
	cfg.Output.Path = filepath.Join(t.TempDir(), "listings.tsv")

	var stdout bytes.Buffer
	application, err := New(context.Background(), cfg, nil, &stdout)
	require.NoError(t, err)
	_, err = application.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, application.Close())

	assert.Empty(t, stdout.String())
	assert.FileExists(t, cfg.Output.Path)
}

func TestApplicationRejectsBadStorage(t *testing.T) {
	t.Parallel()

	cfg := testConfig(crawlServer(t))
	cfg.Storage = config.StorageConfig{Driver: "mongo", DSN: "x"}

	_, err := New(context.Background(), cfg, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "open storage")
}

func TestApplicationWatchStopsWithContext(t *testing.T) {
	t.Parallel()

	cfg := testConfig(crawlServer(t))
	cfg.Output.Format = "lines"

	var stdout bytes.Buffer
	application, err := New(context.Background(), cfg, nil, &stdout)
	require.NoError(t, err)
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, application.Watch(ctx))
}
