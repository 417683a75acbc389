package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page number must be >= 1")
	// ErrUnexpectedStatus marks fetches answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// MalformedTemplateError reports a start address without a "&page=<n>&" segment.
type MalformedTemplateError struct {
	Template string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("malformed page template %q: expected %s<n>& segment", e.Template, pageMarker)
}

// FetchError carries the address of a page that could not be retrieved.
type FetchError struct {
	Address    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Address, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Address, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionMismatchError reports a page whose header and poster counts differ.
type ExtractionMismatchError struct {
	Page    int
	Headers int
	Posters int
}

func (e *ExtractionMismatchError) Error() string {
	return fmt.Sprintf("page %d: %d listing headers but %d poster containers", e.Page, e.Headers, e.Posters)
}
