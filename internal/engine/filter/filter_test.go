package filter

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gofind/internal/model"
)

func country(name, region string, langs map[string]string) model.Country {
	return model.Country{Name: model.CountryName{Common: name}, Region: region, Languages: langs}
}

var (
	france     = country("France", "Europe", map[string]string{"fra": "French"})
	germany    = country("Germany", "Europe", map[string]string{"deu": "German"})
	canada     = country("Canada", "Americas", map[string]string{"eng": "English", "fra": "French"})
	antarctica = country("Antarctica", "", nil)
	lowerEU    = country("Lowerland", "europe", map[string]string{"low": "Lowish"})

	sample = []model.Country{france, germany, canada, antarctica, lowerEU}
)

func names(cs []model.Country) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name.Common
	}
	return out
}

func TestComputeView_UnsetCriteriaReturnsEverythingInOrder(t *testing.T) {
	v := ComputeView(sample, model.FilterCriteria{})
	assert.Equal(t, sample, v.Filtered)
}

func TestComputeView_EmptyCollection(t *testing.T) {
	v := ComputeView(nil, model.FilterCriteria{Search: "x", Region: "Europe"})
	assert.Empty(t, v.Filtered)
	assert.Empty(t, v.Regions)
	assert.Empty(t, v.Languages)
}

func TestComputeView_OptionSets(t *testing.T) {
	v := ComputeView(sample, model.FilterCriteria{Search: "zzz"})

	assert.Empty(t, v.Filtered)
	assert.Equal(t, []string{"Americas", "Europe", "europe"}, v.Regions)
	assert.Equal(t, []string{"English", "French", "German", "Lowish"}, v.Languages)

	for _, r := range v.Regions {
		assert.NotEmpty(t, r)
		assert.True(t, slices.ContainsFunc(sample, func(c model.Country) bool { return c.Region == r }))
	}
	for _, l := range v.Languages {
		assert.NotEmpty(t, l)
		assert.True(t, slices.ContainsFunc(sample, func(c model.Country) bool { return c.HasLanguage(l) }))
	}
}

func TestComputeView_Idempotent(t *testing.T) {
	criteria := model.FilterCriteria{Search: "an", Language: "French"}
	first := ComputeView(sample, criteria)
	second := ComputeView(sample, criteria)
	assert.Equal(t, first, second)
}

func TestComputeView_Search(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{search: "franc", want: []string{"France"}},
		{search: "FRANCE", want: []string{"France"}},
		{search: "Francee", want: []string{}},
		{search: "an", want: []string{"France", "Germany", "Canada", "Antarctica", "Lowerland"}},
		{search: "", want: []string{"France", "Germany", "Canada", "Antarctica", "Lowerland"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			v := ComputeView(sample, model.FilterCriteria{Search: tt.search})
			assert.Equal(t, tt.want, names(v.Filtered))
		})
	}
}

func TestComputeView_SearchFoldsUnicode(t *testing.T) {
	list := []model.Country{country("Åland Islands", "Europe", nil), country("Straße", "Europe", nil)}

	assert.Equal(t, []string{"Åland Islands"}, names(ComputeView(list, model.FilterCriteria{Search: "åLAND"}).Filtered))
	assert.Equal(t, []string{"Straße"}, names(ComputeView(list, model.FilterCriteria{Search: "STRASSE"}).Filtered))
}

func TestComputeView_RegionIsExact(t *testing.T) {
	v := ComputeView(sample, model.FilterCriteria{Region: "Europe"})
	assert.Equal(t, []string{"France", "Germany"}, names(v.Filtered))

	v = ComputeView(sample, model.FilterCriteria{Region: "europe"})
	assert.Equal(t, []string{"Lowerland"}, names(v.Filtered))
}

func TestComputeView_Language(t *testing.T) {
	v := ComputeView(sample, model.FilterCriteria{Language: "French"})
	assert.Equal(t, []string{"France", "Canada"}, names(v.Filtered))

	v = ComputeView([]model.Country{france}, model.FilterCriteria{Language: "German"})
	assert.Empty(t, v.Filtered)

	v = ComputeView([]model.Country{antarctica}, model.FilterCriteria{Language: "French"})
	assert.Empty(t, v.Filtered)
	v = ComputeView([]model.Country{antarctica}, model.FilterCriteria{})
	assert.Len(t, v.Filtered, 1)
}

func TestComputeView_FranceGermanyScenario(t *testing.T) {
	v := ComputeView([]model.Country{france, germany}, model.FilterCriteria{Region: "Europe", Language: "French"})
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "France", v.Filtered[0].Name.Common)
}

func TestComputeView_FilteredIsSubset(t *testing.T) {
	for _, criteria := range []model.FilterCriteria{
		{Search: "a"}, {Region: "Americas"}, {Language: "English"}, {Search: "e", Region: "Europe", Language: "German"},
	} {
		v := ComputeView(sample, criteria)
		for _, c := range v.Filtered {
			assert.True(t, slices.ContainsFunc(sample, func(s model.Country) bool { return s.Name.Common == c.Name.Common }))
		}
	}
}

func TestOptionsAndCycle(t *testing.T) {
	opts := Options([]string{"Americas", "Europe"})
	assert.Equal(t, []string{"", "Americas", "Europe"}, opts)

	assert.Equal(t, "Americas", Cycle(opts, "", 1))
	assert.Equal(t, "Europe", Cycle(opts, "Americas", 1))
	assert.Equal(t, "", Cycle(opts, "Europe", 1))
	assert.Equal(t, "Europe", Cycle(opts, "", -1))
	assert.Equal(t, "", Cycle(opts, "Oceania", 1))
	assert.Equal(t, "", Cycle(nil, "Europe", 1))
}
