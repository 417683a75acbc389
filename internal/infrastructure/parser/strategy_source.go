package parser

import (
	"context"
	"fmt"
	"log/slog"

	"ListingCrawler/internal/config"
	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/ports"
	"ListingCrawler/internal/scanner"
)

// StrategySource implements ListingSource via registered site profiles.
type StrategySource struct {
	registry *scanner.Registry
	targets  []config.TargetConfig
	fetcher  ports.PageFetcher
	policy   MismatchPolicy
	logger   *slog.Logger
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource wires the profile registry with config-defined targets.
func NewStrategySource(reg *scanner.Registry, targets []config.TargetConfig, fetcher ports.PageFetcher, policy MismatchPolicy, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		targets:  targets,
		fetcher:  fetcher,
		policy:   policy,
		logger:   log,
	}
}

// Targets lists the configured target names in declaration order.
func (s *StrategySource) Targets() []string {
	names := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		names = append(names, t.Name)
	}
	return names
}

// FetchTarget resolves the target's profile and extracts its listings.
func (s *StrategySource) FetchTarget(ctx context.Context, name string) (domain.Crawl, error) {
	if s.registry == nil {
		return domain.Crawl{}, fmt.Errorf("profile registry is not configured")
	}

	target, ok := s.lookup(name)
	if !ok {
		return domain.Crawl{}, fmt.Errorf("target %s is not configured", name)
	}

	profile, err := s.resolveProfile(target)
	if err != nil {
		return domain.Crawl{}, fmt.Errorf("target %s: %w", name, err)
	}

	s.debug("process target", "target", target.Name, "profile", profile.Name, "max_pages", target.MaxPages)

	var logger *slog.Logger
	if s.logger != nil {
		logger = s.logger.With("target", target.Name)
	}
	extractor := NewExtractor(s.fetcher, profile, s.policy, logger)

	crawl, err := extractor.Extract(ctx, target.StartURL, target.MaxPages)
	if err != nil {
		return domain.Crawl{}, err
	}

	s.debug("target produced listings", "target", target.Name, "pages", crawl.Pages, "count", len(crawl.Listings))
	return crawl, nil
}

func (s *StrategySource) lookup(name string) (config.TargetConfig, bool) {
	for _, t := range s.targets {
		if t.Name == name {
			return t, true
		}
	}
	return config.TargetConfig{}, false
}

func (s *StrategySource) resolveProfile(target config.TargetConfig) (scanner.Profile, error) {
	name := target.Profile
	if name == "" {
		name = scanner.IMDbKeyword
	}
	profile, err := s.registry.Resolve(name)
	if err != nil {
		return scanner.Profile{}, err
	}

	o := target.Overrides
	profile = profile.Override(scanner.Profile{
		BaseURL:        o.BaseURL,
		HeaderSelector: o.HeaderSelector,
		TitleSelector:  o.TitleSelector,
		YearSelector:   o.YearSelector,
		PosterSelector: o.PosterSelector,
		ImageSelector:  o.ImageSelector,
		PosterAttr:     o.PosterAttr,
	})
	if o.TrailingHeaders != nil {
		profile.TrailingHeaders = *o.TrailingHeaders
	}
	return profile, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
