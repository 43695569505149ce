// Package geo resolves map coordinates for topology nodes. Entities without
// an authoritative location get a country-level fallback position with a
// small jitter so co-located nodes do not stack exactly on the map.
package geo

import (
	_ "embed"
	"math/rand"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fallback_coords.yaml
var fallbackCoordsYAML []byte

type baseCoord struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// fallbackCoords is loaded once at process start and never mutated after.
var fallbackCoords map[string]baseCoord

func init() {
	if err := yaml.Unmarshal(fallbackCoordsYAML, &fallbackCoords); err != nil {
		panic("geo: parse embedded fallback coordinates: " + err.Error())
	}
}

// Jitter applied to country fallback coordinates, in degrees on both axes.
const jitterDegrees = 0.5

// World bounding box for entities with no usable country code. The latitude
// band is kept conservative so random points stay on populated landmass
// latitudes.
const (
	worldLatBound = 50.0
	worldLonBound = 180.0
)

// Resolve returns a usable coordinate pair for an entity. Authoritative
// coordinates win unmodified; otherwise the country fallback applies.
// It never fails. Jitter is intentionally unseeded: positions of unlocated
// nodes may move between runs, which is accepted behavior.
func Resolve(lat, lon *float64, countryCode string) (float64, float64) {
	if lat != nil && lon != nil {
		return *lat, *lon
	}
	return Fallback(countryCode)
}

// Fallback returns a jittered base coordinate for the country code, or a
// uniformly random point in the world bounding box when the code is unknown.
func Fallback(countryCode string) (float64, float64) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		code = "UN"
	}
	if base, ok := fallbackCoords[code]; ok {
		lat := base.Lat + (rand.Float64()*2-1)*jitterDegrees
		lon := base.Lon + (rand.Float64()*2-1)*jitterDegrees
		return lat, lon
	}
	lat := (rand.Float64()*2 - 1) * worldLatBound
	lon := (rand.Float64()*2 - 1) * worldLonBound
	return lat, lon
}
