package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ListingCrawler/internal/config"
	"ListingCrawler/internal/scanner"
)

func TestStrategySourceTargetsKeepOrder(t *testing.T) {
	t.Parallel()

	source := NewStrategySource(scanner.NewRegistry(), []config.TargetConfig{
		{Name: "rock"}, {Name: "jazz"}, {Name: "blues"},
	}, &fakeFetcher{}, MismatchStrict, nil)

	assert.Equal(t, []string{"rock", "jazz", "blues"}, source.Targets())
}

func TestStrategySourceAppliesOverrides(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<li class="item"><div class="thumb"><img data-src="https://img/a.jpg"></div>
  <h2><a href="/film/a/">Alpha</a><em>1999</em></h2></li>
<li class="item"><div class="thumb"><img data-src="https://img/b.jpg"></div>
  <h2><a href="/film/b/">Beta</a><em>n/a</em></h2></li>
</body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{"x/?keywords=k&page=1&sort=a": html}}

	noBanner := 0
	source := NewStrategySource(scanner.NewRegistry(), []config.TargetConfig{{
		Name:     "custom",
		StartURL: startTemplate,
		MaxPages: 1,
		Overrides: config.ProfileConfig{
			BaseURL:         "https://films.example/",
			HeaderSelector:  "h2",
			TrailingHeaders: &noBanner,
			YearSelector:    "em",
			PosterSelector:  "div.thumb",
			PosterAttr:      "data-src",
		},
	}}, fetcher, MismatchStrict, nil)

	crawl, err := source.FetchTarget(context.Background(), "custom")
	require.NoError(t, err)
	require.Len(t, crawl.Listings, 2)

	assert.Equal(t, 1, crawl.Pages)
	assert.Equal(t, "Alpha", crawl.Listings[0].Title)
	assert.Equal(t, "1999", crawl.Listings[0].Year)
	assert.Equal(t, "https://films.example/film/a/", crawl.Listings[0].DetailLink)
	assert.Equal(t, "https://img/a.jpg", crawl.Listings[0].PosterLink)
	assert.Equal(t, "unknown", crawl.Listings[1].Year)
}

func TestStrategySourceUnknownTarget(t *testing.T) {
	t.Parallel()

	source := NewStrategySource(scanner.NewRegistry(), nil, &fakeFetcher{}, MismatchStrict, nil)
	_, err := source.FetchTarget(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestStrategySourceUnknownProfile(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	source := NewStrategySource(scanner.NewRegistry(), []config.TargetConfig{{
		Name: "odd", Profile: "letterboxd", StartURL: startTemplate, MaxPages: 1,
	}}, fetcher, MismatchStrict, nil)

	_, err := source.FetchTarget(context.Background(), "odd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letterboxd")
	assert.Empty(t, fetcher.Calls())
}
