package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var downtown = Coordinate{Lat: 23.8103, Lng: 90.4125}

// north moves c by meters along its meridian.
func north(c Coordinate, meters float64) Coordinate {
	return Coordinate{Lat: c.Lat + meters/EarthRadius*180/math.Pi, Lng: c.Lng}
}

func TestDistanceIdentity(t *testing.T) {
	points := []Coordinate{
		downtown,
		{Lat: 0, Lng: 0},
		{Lat: 90, Lng: 0},
		{Lat: -90, Lng: 180},
		{Lat: -33.8688, Lng: 151.2093},
	}
	for _, p := range points {
		t.Run(p.String(), func(t *testing.T) {
			assert.Equal(t, 0.0, Distance(p, p))
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]Coordinate{
		{downtown, {Lat: 23.7940, Lng: 90.4043}},
		{{Lat: 51.5074, Lng: -0.1278}, {Lat: 40.7128, Lng: -74.0060}},
		{{Lat: -27.4698, Lng: 153.0251}, {Lat: -33.8688, Lng: 151.2093}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "5km along meridian",
			a:        downtown,
			b:        north(downtown, 5000),
			expected: 5000,
			delta:    0.01,
		},
		{
			name:     "Downtown to Uptown",
			a:        downtown,
			b:        Coordinate{Lat: 23.7940, Lng: 90.4043},
			expected: 1995.3,
			delta:    2,
		},
		{
			name:     "Antipodal points",
			a:        Coordinate{Lat: 0, Lng: 0},
			b:        Coordinate{Lat: 0, Lng: 180},
			expected: math.Pi * EarthRadius,
			delta:    0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.a, tt.b)
			assert.False(t, math.IsNaN(d))
			assert.InDelta(t, tt.expected, d, tt.delta)
		})
	}
}

func TestEvaluate(t *testing.T) {
	fence := GeoFence{Center: downtown, Radius: 250}

	tests := []struct {
		name      string
		position  Coordinate
		tolerance float64
		inside    bool
	}{
		{name: "At center", position: downtown, tolerance: 20, inside: true},
		{name: "Just inside the radius", position: north(downtown, 249.9), tolerance: 0, inside: true},
		{name: "Within tolerance", position: north(downtown, 265), tolerance: 20, inside: true},
		{name: "Beyond tolerance", position: north(downtown, 275), tolerance: 20, inside: false},
		{name: "Zero tolerance just outside", position: north(downtown, 251), tolerance: 0, inside: false},
		{name: "Far away", position: north(downtown, 5000), tolerance: 20, inside: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fence.Evaluate(tt.position, tt.tolerance)
			assert.Equal(t, tt.inside, res.Inside)
		})
	}

	res := fence.Evaluate(north(downtown, 5000), 20)
	assert.InDelta(t, 4750, res.Overage(), 0.5)
}

func TestValid(t *testing.T) {
	assert.True(t, downtown.Valid())
	assert.False(t, Coordinate{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lng: -181}.Valid())
	assert.False(t, Coordinate{Lat: math.NaN(), Lng: 0}.Valid())
	assert.True(t, GeoFence{Center: downtown, Radius: 250}.Valid())
	assert.False(t, GeoFence{Center: downtown, Radius: 0}.Valid())
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf(nil)
	assert.False(t, ok)

	b, ok := BoundsOf([]Coordinate{downtown, {Lat: 23.7511, Lng: 90.3934}, {Lat: 23.7940, Lng: 90.4043}})
	assert.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 23.7511, Lng: 90.3934}, b.SouthWest)
	assert.Equal(t, Coordinate{Lat: 23.8103, Lng: 90.4125}, b.NorthEast)
}
