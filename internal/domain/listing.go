package domain

import "time"

// UnknownYear is stored when a listing header carries no four-digit year.
const UnknownYear = "unknown"

// Listing is a single catalog entry scraped from a listing page.
type Listing struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	DetailLink string `json:"detailLink"`
	PosterLink string `json:"posterLink"`
}

// Crawl is the outcome of extracting one paginated listing.
type Crawl struct {
	Listings []Listing
	Pages    int
}

// StoredListing is the persisted view of a listing kept for deduplication.
type StoredListing struct {
	Listing
	Source      string
	Fingerprint string
	FirstSeen   time.Time
	LastSeen    time.Time
}

// RunSummary reports what one crawl target produced during a pipeline run.
type RunSummary struct {
	Target   string
	Pages    int
	Listings int
	New      int
	Updated  int
}
