package viz

import (
	"math"
	"strings"

	"github.com/san-kum/mapstory/internal/camera"
)

const brailleBlank = 0x2800

// Braille cells are 2x4 dots; dotBits maps a sub-cell position to its bit.
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid. Its resolution in dots is (Width*2) x
// (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.Grid[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine is Bresenham over dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

const trailLength = 120

// Minimap draws the camera on an equirectangular world: a graticule, the
// path the view center has taken, and a box for the area the zoom covers.
type Minimap struct {
	canvas *Canvas
	trail  []camera.View
}

func NewMinimap(w, h int) *Minimap {
	return &Minimap{canvas: NewCanvas(w, h), trail: make([]camera.View, 0, trailLength)}
}

// Track appends v to the trail when the center moved.
func (m *Minimap) Track(v camera.View) {
	if n := len(m.trail); n > 0 {
		last := m.trail[n-1]
		if last.Longitude == v.Longitude && last.Latitude == v.Latitude && last.Zoom == v.Zoom {
			return
		}
	}
	m.trail = append(m.trail, v)
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
}

func (m *Minimap) project(lon, lat float64) (int, int) {
	w := float64(m.canvas.Width*2 - 1)
	h := float64(m.canvas.Height*4 - 1)
	x := (lon + 180) / 360 * w
	y := (90 - lat) / 180 * h
	return int(math.Round(x)), int(math.Round(y))
}

// Render draws the current view and returns the canvas text.
func (m *Minimap) Render(v camera.View) string {
	c := m.canvas
	c.Clear()

	for lon := -180.0; lon <= 180; lon += 60 {
		for lat := -90.0; lat <= 90; lat += 6 {
			c.Set(m.project(lon, lat))
		}
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		for lon := -180.0; lon <= 180; lon += 6 {
			c.Set(m.project(lon, lat))
		}
	}

	for i := 1; i < len(m.trail); i++ {
		a, b := m.trail[i-1], m.trail[i]
		// skip segments that wrap the antimeridian
		if math.Abs(a.Longitude-b.Longitude) > 180 {
			continue
		}
		x0, y0 := m.project(a.Longitude, a.Latitude)
		x1, y1 := m.project(b.Longitude, b.Latitude)
		c.DrawLine(x0, y0, x1, y1)
	}

	halfLon := 180 / math.Pow(2, math.Max(v.Zoom, 0))
	halfLat := halfLon / 2
	x0, y0 := m.project(v.Longitude-halfLon, math.Min(v.Latitude+halfLat, 90))
	x1, y1 := m.project(v.Longitude+halfLon, math.Max(v.Latitude-halfLat, -90))
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)

	cx, cy := m.project(v.Longitude, v.Latitude)
	c.DrawLine(cx-2, cy, cx+2, cy)
	c.DrawLine(cx, cy-2, cx, cy+2)

	return c.String()
}
