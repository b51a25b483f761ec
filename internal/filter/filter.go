package filter

import (
	"strings"

	"github.com/amishk599/jobby/internal/model"
)

var _ model.RecordFilter = (*TitleAndLocationFilter)(nil)

// TitleAndLocationFilter keeps records whose title contains any of the title
// keywords and whose location contains any of the location keywords, unless
// an exclude keyword matches. Matching is case-insensitive. Empty include
// lists match everything.
type TitleAndLocationFilter struct {
	titleKeywords    []string
	titleExcludes    []string
	locations        []string
	excludeLocations []string
}

// NewTitleAndLocationFilter lower-cases all keywords up front.
func NewTitleAndLocationFilter(titleKeywords, titleExcludes, locations, excludeLocations []string) *TitleAndLocationFilter {
	return &TitleAndLocationFilter{
		titleKeywords:    lowerAll(titleKeywords),
		titleExcludes:    lowerAll(titleExcludes),
		locations:        lowerAll(locations),
		excludeLocations: lowerAll(excludeLocations),
	}
}

// Match reports whether r passes the filter.
func (f *TitleAndLocationFilter) Match(r model.Record) bool {
	title := strings.ToLower(r.Title)
	location := strings.ToLower(r.Location)

	if containsAny(title, f.titleExcludes) || containsAny(location, f.excludeLocations) {
		return false
	}
	if len(f.titleKeywords) > 0 && !containsAny(title, f.titleKeywords) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(location, f.locations) {
		return false
	}
	return true
}

// Empty reports whether the filter has no keywords at all and so matches everything.
func (f *TitleAndLocationFilter) Empty() bool {
	return len(f.titleKeywords) == 0 && len(f.titleExcludes) == 0 &&
		len(f.locations) == 0 && len(f.excludeLocations) == 0
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
