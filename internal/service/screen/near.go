// internal/service/screen/near.go
package screen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"adscreen-service/internal/domain/screen"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const defaultRadiusKm = 10.0

// parseNear reads "lat,lng".
func parseNear(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("near must be lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return orb.Point{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return orb.Point{lng, lat}, nil
}

// withinRadius keeps the locations with coordinates inside radiusKm of origin,
// nearest first, with DistanceKm filled in.
func withinRadius(locations []screen.Location, origin orb.Point, radiusKm float64) []screen.Location {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}

	out := make([]screen.Location, 0, len(locations))
	for _, l := range locations {
		if l.Latitude == nil || l.Longitude == nil {
			continue
		}
		km := geo.Distance(origin, orb.Point{*l.Longitude, *l.Latitude}) / 1000
		if km > radiusKm {
			continue
		}
		d := float64(int64(km*100+0.5)) / 100
		l.DistanceKm = &d
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	return out
}
