package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Locate returns the first feature whose outline contains (lat, lng).
func (bi *BoundaryIndex) Locate(lat, lng float64) (int, bool) {
	if bi == nil {
		return -1, false
	}
	point := orb.Point{lng, lat} // orb.Point is [lng, lat]
	for i, g := range bi.geometries {
		if g == nil || !g.Bound().Contains(point) {
			continue
		}
		if contains(g, point) {
			return i, true
		}
	}
	return -1, false
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, sub := range g {
			if contains(sub, p) {
				return true
			}
		}
	}
	return false
}
