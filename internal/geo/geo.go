package geo

import (
	"errors"
	"math"

	"github.com/balri/busstop/internal/models"
)

// ErrNoStops means the stop set was empty. This is a deployment problem
// (nothing was imported), not a normal user-facing condition.
var ErrNoStops = errors.New("no stops loaded")

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Match is a resolved nearest stop and the caller's distance to it.
type Match struct {
	Stop           models.Stop
	DistanceMeters float64
}

// Nearest returns the single closest stop by great-circle distance.
// Ties keep the first stop encountered; true float ties are vanishingly
// rare so there is no special case.
func Nearest(lat, lon float64, stops []models.Stop) (Match, error) {
	if len(stops) == 0 {
		return Match{}, ErrNoStops
	}

	best := Match{DistanceMeters: math.Inf(1)}
	for _, stop := range stops {
		dist := Haversine(lat, lon, stop.Lat, stop.Lon)
		if dist < best.DistanceMeters {
			best = Match{Stop: stop, DistanceMeters: dist}
		}
	}
	return best, nil
}
