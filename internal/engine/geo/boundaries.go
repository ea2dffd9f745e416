package geo

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/gofind/internal/model"
)

// BoundaryIndex looks boundary features up by country. It is rebuilt
// whenever a new feature collection arrives.
type BoundaryIndex struct {
	features   map[string]int // key: lowercase name or ISO code -> feature position
	geometries []orb.Geometry
}

// NewBoundaryIndex indexes features by the Natural Earth NAME, ADMIN,
// NAME_LONG and ISO_A3 properties.
func NewBoundaryIndex(features []*geojson.Feature) *BoundaryIndex {
	idx := &BoundaryIndex{
		features:   make(map[string]int, len(features)*3),
		geometries: make([]orb.Geometry, len(features)),
	}
	for i, f := range features {
		idx.geometries[i] = f.Geometry
		for _, key := range []string{"NAME", "ADMIN", "NAME_LONG", "ISO_A3", "ADM0_A3"} {
			v, ok := f.Properties[key].(string)
			if !ok || v == "" || v == "-99" {
				continue
			}
			k := strings.ToLower(v)
			if _, taken := idx.features[k]; !taken {
				idx.features[k] = i
			}
		}
	}
	return idx
}

// Lookup returns the position of the feature outlining country, trying the
// ISO code first, then the common and official names, then the feature
// containing the country's reference coordinates.
func (bi *BoundaryIndex) Lookup(c model.Country) (int, bool) {
	if bi == nil {
		return -1, false
	}
	for _, key := range []string{c.CCA3, c.Name.Common, c.Name.Official} {
		if key == "" {
			continue
		}
		if i, ok := bi.features[strings.ToLower(key)]; ok {
			return i, true
		}
	}
	if lat, lng, ok := c.Coordinates(); ok {
		return bi.Locate(lat, lng)
	}
	return -1, false
}

func (bi *BoundaryIndex) Len() int {
	if bi == nil {
		return 0
	}
	return len(bi.features)
}

// Rings flattens a feature's geometry into its polygon rings.
// Non-areal geometries yield nil.
func Rings(g orb.Geometry) []orb.Ring {
	switch g := g.(type) {
	case orb.Polygon:
		return g
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, p := range g {
			rings = append(rings, p...)
		}
		return rings
	case orb.Collection:
		var rings []orb.Ring
		for _, sub := range g {
			rings = append(rings, Rings(sub)...)
		}
		return rings
	default:
		return nil
	}
}
