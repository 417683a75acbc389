package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ListingSource
	Repository ports.ListingRepository
	Writer     ports.ListingWriter
	Logger     *slog.Logger
}

// Pipeline implements the crawl → store → render workflow.
type Pipeline struct {
	source     ports.ListingSource
	repository ports.ListingRepository
	writer     ports.ListingWriter
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		writer:     deps.Writer,
		logger:     logger,
	}
}

// Run crawls every configured target in order. The first failing target
// aborts the run; nothing is written for a failed run.
func (p *Pipeline) Run(ctx context.Context) ([]domain.RunSummary, error) {
	if p.source == nil {
		return nil, nil
	}

	var (
		summaries []domain.RunSummary
		all       []domain.Listing
	)
	for _, target := range p.source.Targets() {
		crawl, err := p.source.FetchTarget(ctx, target)
		if err != nil {
			return summaries, fmt.Errorf("crawl target %s: %w", target, err)
		}

		summary := domain.RunSummary{
			Target:   target,
			Pages:    crawl.Pages,
			Listings: len(crawl.Listings),
		}

		if p.repository != nil {
			created, updated, err := p.repository.Upsert(ctx, target, crawl.Listings)
			if err != nil {
				return summaries, fmt.Errorf("persist target %s: %w", target, err)
			}
			summary.New = created
			summary.Updated = updated
		}

		p.logger.Info("target crawled",
			"target", target,
			"pages", summary.Pages,
			"listings", summary.Listings,
			"new", summary.New,
			"updated", summary.Updated,
		)

		summaries = append(summaries, summary)
		all = append(all, crawl.Listings...)
	}

	if p.writer == nil {
		return summaries, nil
	}

	if err := p.writer.Write(all); err != nil {
		return summaries, fmt.Errorf("write listings: %w", err)
	}
	return summaries, nil
}
