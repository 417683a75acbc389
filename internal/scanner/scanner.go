package scanner

import (
	"fmt"
	"sort"
)

// IMDbKeyword is the registry name of the built-in IMDb keyword-search layout.
const IMDbKeyword = "imdb-keyword"

// Profile describes where listing fields live in a site's listing markup.
type Profile struct {
	Name string
	// BaseURL is prepended to relative detail links.
	BaseURL string
	// HeaderSelector matches the element bundling title, year and detail link.
	HeaderSelector string
	// TrailingHeaders is the number of non-item headers closing every page.
	TrailingHeaders int
	TitleSelector   string
	YearSelector    string
	// PosterSelector matches the container wrapping an item's poster.
	PosterSelector string
	ImageSelector  string
	// PosterAttr is the lazy-image attribute holding the poster address.
	PosterAttr string
}

// IMDbKeywordProfile returns the layout of IMDb keyword search result pages.
// Class filters compare the whole class attribute, so decorated variants
// such as "lister-item-image ribbonize featured" are not items.
func IMDbKeywordProfile() Profile {
	return Profile{
		Name:            IMDbKeyword,
		BaseURL:         "https://www.imdb.com/",
		HeaderSelector:  "h3",
		TrailingHeaders: 1,
		TitleSelector:   "a",
		YearSelector:    `span[class="lister-item-year text-muted unbold"]`,
		PosterSelector:  `div[class="lister-item-image ribbonize"]`,
		ImageSelector:   "img",
		PosterAttr:      "loadlate",
	}
}

// Override returns a copy of p with every non-empty field of o applied.
func (p Profile) Override(o Profile) Profile {
	if o.BaseURL != "" {
		p.BaseURL = o.BaseURL
	}
	if o.HeaderSelector != "" {
		p.HeaderSelector = o.HeaderSelector
	}
	if o.TrailingHeaders > 0 {
		p.TrailingHeaders = o.TrailingHeaders
	}
	if o.TitleSelector != "" {
		p.TitleSelector = o.TitleSelector
	}
	if o.YearSelector != "" {
		p.YearSelector = o.YearSelector
	}
	if o.PosterSelector != "" {
		p.PosterSelector = o.PosterSelector
	}
	if o.ImageSelector != "" {
		p.ImageSelector = o.ImageSelector
	}
	if o.PosterAttr != "" {
		p.PosterAttr = o.PosterAttr
	}
	return p
}

// Registry keeps a mapping from profile names to site layouts.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry holding the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: map[string]Profile{}}
	r.Register(IMDbKeywordProfile())
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(profile Profile) {
	if r.profiles == nil {
		r.profiles = map[string]Profile{}
	}
	r.profiles[profile.Name] = profile
}

// Resolve returns a profile by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Profile, error) {
	if profile, ok := r.profiles[name]; ok {
		return profile, nil
	}
	return Profile{}, fmt.Errorf("profile %s is not registered", name)
}

// Names lists registered profile names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
