package model

// CountryName holds the names the REST countries API reports for a country.
type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Country is one nation/territory record from the countries endpoint.
// Region and Languages may be absent in the payload.
type Country struct {
	Name       CountryName       `json:"name"`
	CCA3       string            `json:"cca3"`
	Capital    []string          `json:"capital"`
	Region     string            `json:"region"`
	Subregion  string            `json:"subregion"`
	Population int64             `json:"population"`
	Languages  map[string]string `json:"languages"`
	LatLng     []float64         `json:"latlng"`
	Flag       string            `json:"flag"`
}

// LanguageNames returns the values of the languages mapping.
// A country without languages yields nil.
func (c Country) LanguageNames() []string {
	if len(c.Languages) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Languages))
	for _, name := range c.Languages {
		names = append(names, name)
	}
	return names
}

// HasLanguage reports whether lang is one of the country's language names.
func (c Country) HasLanguage(lang string) bool {
	for _, name := range c.Languages {
		if name == lang {
			return true
		}
	}
	return false
}

// Coordinates returns the country's reference lat/lng, if the payload had one.
func (c Country) Coordinates() (lat, lng float64, ok bool) {
	if len(c.LatLng) < 2 {
		return 0, 0, false
	}
	return c.LatLng[0], c.LatLng[1], true
}

// FilterCriteria holds the user-chosen constraints on the country list.
// An empty Region or Language means "all".
type FilterCriteria struct {
	Search   string
	Region   string
	Language string
}

// IsZero reports whether no constraint is set.
func (f FilterCriteria) IsZero() bool {
	return f.Search == "" && f.Region == "" && f.Language == ""
}

// Viewpoint is the camera position over the globe. Altitude is measured in
// globe radii above the surface.
type Viewpoint struct {
	Lat      float64
	Lng      float64
	Altitude float64
}

// DefaultViewpoint is where the camera starts.
var DefaultViewpoint = Viewpoint{Lat: 0, Lng: 0, Altitude: 2.5}
