package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ListingCrawler/internal/domain"
)

type stubSource struct {
	targets []string
	crawls  map[string]domain.Crawl
	errs    map[string]error
	calls   []string
}

func (s *stubSource) Targets() []string { return s.targets }

func (s *stubSource) FetchTarget(_ context.Context, target string) (domain.Crawl, error) {
	s.calls = append(s.calls, target)
	if err := s.errs[target]; err != nil {
		return domain.Crawl{}, err
	}
	return s.crawls[target], nil
}

type stubRepository struct {
	sources []string
	err     error
}

func (r *stubRepository) Upsert(_ context.Context, source string, listings []domain.Listing) (int, int, error) {
	if r.err != nil {
		return 0, 0, r.err
	}
	r.sources = append(r.sources, source)
	return len(listings), 0, nil
}

func (r *stubRepository) List(context.Context, string) ([]domain.StoredListing, error) {
	return nil, nil
}

type stubWriter struct {
	written [][]domain.Listing
	err     error
}

func (w *stubWriter) Write(listings []domain.Listing) error {
	w.written = append(w.written, listings)
	return w.err
}

func listing(title string) domain.Listing {
	return domain.Listing{Title: title, Year: "1999", DetailLink: "https://www.imdb.com/title/" + title + "/"}
}

func twoTargets() *stubSource {
	return &stubSource{
		targets: []string{"rock", "jazz"},
		crawls: map[string]domain.Crawl{
			"rock": {Listings: []domain.Listing{listing("a"), listing("b")}, Pages: 2},
			"jazz": {Listings: []domain.Listing{listing("c")}, Pages: 1},
		},
	}
}

func TestPipelineRunsTargetsInOrder(t *testing.T) {
	t.Parallel()

	source := twoTargets()
	repo := &stubRepository{}
	writer := &stubWriter{}

	summaries, err := NewPipeline(PipelineDeps{Source: source, Repository: repo, Writer: writer}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"rock", "jazz"}, source.calls)
	assert.Equal(t, []string{"rock", "jazz"}, repo.sources)
	assert.Equal(t, []domain.RunSummary{
		{Target: "rock", Pages: 2, Listings: 2, New: 2},
		{Target: "jazz", Pages: 1, Listings: 1, New: 1},
	}, summaries)

	require.Len(t, writer.written, 1)
	assert.Equal(t, []domain.Listing{listing("a"), listing("b"), listing("c")}, writer.written[0])
}

func TestPipelineWithoutRepository(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{}
	summaries, err := NewPipeline(PipelineDeps{Source: twoTargets(), Writer: writer}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Zero(t, summaries[0].New)
	assert.Len(t, writer.written, 1)
}

func TestPipelineStopsOnCrawlError(t *testing.T) {
	t.Parallel()

	boom := errors.New("page 2: fetch failed")
	source := twoTargets()
	source.errs = map[string]error{"rock": boom}
	writer := &stubWriter{}

	_, err := NewPipeline(PipelineDeps{Source: source, Writer: writer}).Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "crawl target rock")
	assert.Equal(t, []string{"rock"}, source.calls)
	assert.Empty(t, writer.written, "nothing is written for a failed run")
}

func TestPipelineWrapsPersistAndWriteErrors(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("database is locked")
	_, err := NewPipeline(PipelineDeps{Source: twoTargets(), Repository: &stubRepository{err: dbErr}}).Run(context.Background())
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "persist target rock")

	writeErr := errors.New("disk full")
	_, err = NewPipeline(PipelineDeps{Source: twoTargets(), Writer: &stubWriter{err: writeErr}}).Run(context.Background())
	require.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "write listings")
}

func TestPipelineWithoutSource(t *testing.T) {
	t.Parallel()

	summaries, err := NewPipeline(PipelineDeps{}).Run(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, summaries)
}

type stubDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *stubDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *stubDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipelineOnTrigger(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{}
	source := twoTargets()
	source.errs = map[string]error{"jazz": errors.New("timeout")}
	writer := &stubWriter{}
	sched := NewScheduler(driver, NewPipeline(PipelineDeps{Source: source, Writer: writer}), nil)

	require.NoError(t, sched.Start(context.Background()))
	require.NotNil(t, driver.job)

	// a failed run is logged, the next trigger tries again
	driver.job(time.Now())
	driver.job(time.Now())
	assert.Equal(t, []string{"rock", "jazz", "rock", "jazz"}, source.calls)
	assert.Empty(t, writer.written)

	require.NoError(t, sched.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(nil, nil, nil)
	assert.NoError(t, sched.Start(context.Background()))
	assert.NoError(t, sched.Stop(context.Background()))
}
