package parser

import (
	"strconv"
	"strings"
)

const pageMarker = "&page="

// BuildPageAddress replaces the page number of a templated listing address.
// The template must contain "&page=<n>&"; everything before and after the
// old value is kept verbatim.
func BuildPageAddress(template string, page int) (string, error) {
	if page < 1 {
		return "", ErrInvalidPage
	}

	prefix, remainder, ok := strings.Cut(template, pageMarker)
	if !ok {
		return "", &MalformedTemplateError{Template: template}
	}
	_, suffix, ok := strings.Cut(remainder, "&")
	if !ok {
		return "", &MalformedTemplateError{Template: template}
	}

	return prefix + pageMarker + strconv.Itoa(page) + "&" + suffix, nil
}
