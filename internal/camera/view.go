package camera

import (
	"math"
	"time"
)

// View is a map viewpoint. Bearing and Pitch are in degrees.
type View struct {
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Zoom      float64 `yaml:"zoom" json:"zoom"`
	Bearing   float64 `yaml:"bearing" json:"bearing"`
	Pitch     float64 `yaml:"pitch" json:"pitch"`
}

// Shot is the scripted move a camera layer performs when it becomes visible.
type Shot struct {
	Target   View
	Delay    time.Duration
	Duration time.Duration
	Rotate   bool
}

// Interpolate blends two views. Bearing takes the short way around.
func Interpolate(from, to View, t float64) View {
	return View{
		Longitude: lerp(from.Longitude, to.Longitude, t),
		Latitude:  lerp(from.Latitude, to.Latitude, t),
		Zoom:      lerp(from.Zoom, to.Zoom, t),
		Bearing:   normalizeBearing(from.Bearing + shortestArc(from.Bearing, to.Bearing)*t),
		Pitch:     lerp(from.Pitch, to.Pitch, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func shortestArc(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}

func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}
