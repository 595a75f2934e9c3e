package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngularRadius(t *testing.T) {
	assert.InDelta(t, 10.0/3963.0, AngularRadius(10), 1e-12)
}

func TestWithinCap(t *testing.T) {
	boston := Point{Latitude: 42.3601, Longitude: -71.0589}
	cambridge := Point{Latitude: 42.3736, Longitude: -71.1097}
	providence := Point{Latitude: 41.8240, Longitude: -71.4128}

	radius := AngularRadius(10)
	assert.True(t, WithinCap(boston, cambridge, radius))
	assert.False(t, WithinCap(boston, providence, radius))
	assert.True(t, WithinCap(boston, boston, radius))
}

func TestDistanceMiles(t *testing.T) {
	boston := Point{Latitude: 42.3601, Longitude: -71.0589}
	providence := Point{Latitude: 41.8240, Longitude: -71.4128}

	assert.InDelta(t, 41, DistanceMiles(boston, providence), 2)
}

func TestBoundingBox_ContainsCap(t *testing.T) {
	center := Point{Latitude: 42.36, Longitude: -71.06}
	radius := AngularRadius(25)
	minLat, maxLat, minLon, maxLon := BoundingBox(center, radius)

	assert.Less(t, minLat, center.Latitude)
	assert.Greater(t, maxLat, center.Latitude)
	assert.Less(t, minLon, center.Longitude)
	assert.Greater(t, maxLon, center.Longitude)

	edge := Point{Latitude: center.Latitude, Longitude: maxLon - 0.0001}
	assert.True(t, WithinCap(center, edge, radius*1.01))
}

func TestBoundingBox_Antimeridian(t *testing.T) {
	radius := AngularRadius(50)

	for _, tt := range []struct {
		name          string
		center, other Point
	}{
		{"east of the line", Point{Latitude: -17, Longitude: 179.9}, Point{Latitude: -17, Longitude: -179.9}},
		{"west of the line", Point{Latitude: -17, Longitude: -179.9}, Point{Latitude: -17, Longitude: 179.9}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, WithinCap(tt.center, tt.other, radius))

			minLat, maxLat, minLon, maxLon := BoundingBox(tt.center, radius)
			assert.GreaterOrEqual(t, minLon, -180.0)
			assert.LessOrEqual(t, maxLon, 180.0)
			assert.True(t, tt.other.Latitude >= minLat && tt.other.Latitude <= maxLat)
			assert.True(t, tt.other.Longitude >= minLon && tt.other.Longitude <= maxLon,
				"lon %v outside [%v, %v]", tt.other.Longitude, minLon, maxLon)
		})
	}
}

func TestBoundingBox_Poles(t *testing.T) {
	_, maxLat, minLon, maxLon := BoundingBox(Point{Latitude: 89.99, Longitude: 0}, AngularRadius(50))
	assert.Equal(t, 90.0, maxLat)
	assert.Equal(t, -180.0, minLon)
	assert.Equal(t, 180.0, maxLon)
}
