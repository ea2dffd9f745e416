// Package filter derives the visible country list and the selectable
// region/language options from the fetched countries and the user's criteria.
// Everything here is recomputed from scratch; nothing is cached.
package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rendis/gofind/internal/model"
)

// View is the derived state for one (countries, criteria) pair.
type View struct {
	Filtered  []model.Country
	Regions   []string // distinct non-empty regions, sorted
	Languages []string // distinct language names, sorted
}

// ComputeView filters countries by criteria and collects the option sets.
// Filtered keeps the input order. Region and language matches are exact;
// only the name search is case-insensitive.
func ComputeView(countries []model.Country, criteria model.FilterCriteria) View {
	folder := cases.Fold()
	search := folder.String(criteria.Search)

	regions := make(map[string]struct{})
	languages := make(map[string]struct{})
	filtered := make([]model.Country, 0, len(countries))

	for _, c := range countries {
		if c.Region != "" {
			regions[c.Region] = struct{}{}
		}
		for _, lang := range c.Languages {
			if lang != "" {
				languages[lang] = struct{}{}
			}
		}

		if !strings.Contains(folder.String(c.Name.Common), search) {
			continue
		}
		if criteria.Region != "" && c.Region != criteria.Region {
			continue
		}
		if criteria.Language != "" && !c.HasLanguage(criteria.Language) {
			continue
		}
		filtered = append(filtered, c)
	}

	return View{
		Filtered:  filtered,
		Regions:   sortedKeys(regions),
		Languages: sortedKeys(languages),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Options prepends the "all" entry (empty value) to a derived option set.
func Options(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, "")
	return append(out, values...)
}

// Cycle returns the option after (dir > 0) or before (dir < 0) current,
// wrapping around. A current value missing from options restarts at "all".
func Cycle(options []string, current string, dir int) string {
	if len(options) == 0 {
		return ""
	}
	idx := slices.Index(options, current)
	if idx < 0 {
		return options[0]
	}
	idx = (idx + dir) % len(options)
	if idx < 0 {
		idx += len(options)
	}
	return options[idx]
}
