package components

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/gofind/internal/engine/geo"
	"github.com/rendis/gofind/internal/model"
	"github.com/rendis/gofind/internal/tui/styles"
)

// ColorFunc picks the outline colour of one feature.
type ColorFunc func() lipgloss.Color

// RandomColor returns an unseeded random #rrggbb colour.
func RandomColor() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", rand.IntN(16777215)))
}

// Globe renders an orthographic view of the earth with country outlines
// using Braille characters. It is the surface the render loop rotates.
type Globe struct {
	width     int
	height    int
	pov       model.Viewpoint
	features  []*geojson.Feature
	rings     [][]s2.Point // per feature, all ring vertices on the unit sphere
	ringStart [][]int      // per feature, index where each ring starts in rings
	colors    []lipgloss.Color
	colorFn   ColorFunc
	highlight int
}

func NewGlobe(pov model.Viewpoint) *Globe {
	if pov.Altitude <= 0 {
		pov.Altitude = model.DefaultViewpoint.Altitude
	}
	return &Globe{
		pov:       pov,
		colorFn:   RandomColor,
		highlight: -1,
	}
}

// SetColorFunc replaces the feature colour generator and recolours.
func (g *Globe) SetColorFunc(fn ColorFunc) {
	g.colorFn = fn
	g.Recolor()
}

func (g *Globe) SetSize(width, height int) {
	g.width = width
	g.height = height
}

func (g *Globe) Size() (int, int) {
	return g.width, g.height
}

// PointOfView returns the camera. It reports false until the globe has been
// given a drawable size.
func (g *Globe) PointOfView() (model.Viewpoint, bool) {
	return g.pov, g.width > 0 && g.height > 0
}

// SetPointOfView moves the camera. A terminal redraws every frame anyway,
// so the transition is applied immediately.
func (g *Globe) SetPointOfView(v model.Viewpoint, _ time.Duration) {
	if v.Altitude <= 0 {
		v.Altitude = g.pov.Altitude
	}
	g.pov = v
}

// SetPolygons replaces the boundary layer wholesale and picks new colours.
func (g *Globe) SetPolygons(features []*geojson.Feature) {
	g.features = features
	g.rings = make([][]s2.Point, len(features))
	g.ringStart = make([][]int, len(features))
	for i, f := range features {
		var pts []s2.Point
		var starts []int
		for _, ring := range geo.Rings(f.Geometry) {
			starts = append(starts, len(pts))
			for _, p := range ring {
				// orb.Point is [lng, lat]
				pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())))
			}
		}
		g.rings[i] = pts
		g.ringStart[i] = starts
	}
	g.highlight = -1
	g.Recolor()
}

func (g *Globe) PolygonCount() int {
	return len(g.features)
}

// Recolor assigns every feature a fresh colour.
func (g *Globe) Recolor() {
	g.colors = make([]lipgloss.Color, len(g.features))
	for i := range g.colors {
		g.colors[i] = g.colorFn()
	}
}

func (g *Globe) FeatureColor(i int) (lipgloss.Color, bool) {
	if i < 0 || i >= len(g.colors) {
		return "", false
	}
	return g.colors[i], true
}

// SetHighlight marks one feature to be drawn on top in the accent colour.
// -1 clears it.
func (g *Globe) SetHighlight(i int) {
	if i >= len(g.features) {
		i = -1
	}
	g.highlight = i
}

func (g *Globe) Highlight() int {
	return g.highlight
}

// projector maps unit sphere points to dot coordinates for the current camera.
type projector struct {
	center, east, north r3.Vector
	cx, cy, r           float64
}

func (g *Globe) projector(dotW, dotH int) projector {
	lat := g.pov.Lat * math.Pi / 180
	lng := g.pov.Lng * math.Pi / 180
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(g.pov.Lat, g.pov.Lng)).Vector
	east := r3.Vector{X: -math.Sin(lng), Y: math.Cos(lng), Z: 0}
	north := r3.Vector{X: -math.Sin(lat) * math.Cos(lng), Y: -math.Sin(lat) * math.Sin(lng), Z: math.Cos(lat)}

	// Zoom follows altitude: the default altitude fills 95% of the pane.
	zoom := model.DefaultViewpoint.Altitude / g.pov.Altitude
	r := math.Min(float64(dotW), float64(dotH)) / 2 * 0.95 * zoom

	return projector{
		center: center,
		east:   east,
		north:  north,
		cx:     float64(dotW) / 2,
		cy:     float64(dotH) / 2,
		r:      r,
	}
}

// project returns dot coordinates and whether p is on the visible hemisphere.
func (pr projector) project(p s2.Point) (int, int, bool) {
	if p.Vector.Dot(pr.center) < 0 {
		return 0, 0, false
	}
	x := p.Vector.Dot(pr.east)
	y := p.Vector.Dot(pr.north)
	return int(math.Round(pr.cx + x*pr.r)), int(math.Round(pr.cy - y*pr.r)), true
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

func (g *Globe) View() string {
	if g.width <= 0 || g.height <= 0 {
		return ""
	}

	cols := g.width
	rows := g.height
	dotW := cols * 2
	dotH := rows * 4
	pr := g.projector(dotW, dotH)

	// owner[y][x]: 0 = empty, -1 = limb, i+1 = feature i
	owner := make([][]int, dotH)
	for i := range owner {
		owner[i] = make([]int, dotW)
	}

	// Limb circle
	steps := int(2*math.Pi*pr.r) + 8
	for s := 0; s < steps; s++ {
		a := 2 * math.Pi * float64(s) / float64(steps)
		x := int(math.Round(pr.cx + math.Cos(a)*pr.r))
		y := int(math.Round(pr.cy + math.Sin(a)*pr.r))
		if x >= 0 && x < dotW && y >= 0 && y < dotH {
			owner[y][x] = -1
		}
	}

	drawFeature := func(fi int) {
		pts := g.rings[fi]
		starts := g.ringStart[fi]
		for ri, start := range starts {
			end := len(pts)
			if ri+1 < len(starts) {
				end = starts[ri+1]
			}
			for i := start; i < end-1; i++ {
				x0, y0, ok0 := pr.project(pts[i])
				x1, y1, ok1 := pr.project(pts[i+1])
				if !ok0 || !ok1 {
					continue
				}
				drawLine(owner, x0, y0, x1, y1, dotW, dotH, fi+1)
			}
		}
	}
	for fi := range g.rings {
		if fi != g.highlight {
			drawFeature(fi)
		}
	}
	if g.highlight >= 0 && g.highlight < len(g.rings) {
		drawFeature(g.highlight)
	}

	limbStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	highlightStyle := lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var val rune = 0x2800
			cellOwner := 0

			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if o := owner[dy][dx]; o != 0 {
					val |= brailleDots[dot]
					// Features win over the limb; the highlight wins over everything.
					if cellOwner <= 0 || o-1 == g.highlight {
						cellOwner = o
					}
				}
			}

			switch {
			case val == 0x2800:
				sb.WriteRune(' ')
			case cellOwner == -1:
				sb.WriteString(limbStyle.Render(string(val)))
			case cellOwner-1 == g.highlight:
				sb.WriteString(highlightStyle.Render(string(val)))
			default:
				style := lipgloss.NewStyle()
				if c, ok := g.FeatureColor(cellOwner - 1); ok {
					style = style.Foreground(c)
				}
				sb.WriteString(style.Render(string(val)))
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(grid [][]int, x0, y0, x1, y1, maxW, maxH, value int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < maxW && y0 >= 0 && y0 < maxH {
			grid[y0][x0] = value
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
