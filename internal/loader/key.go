package loader

import (
	"fmt"
	"math"

	"github.com/sells-group/solar-scout/internal/model"
)

// QueryKey is the normalized memoization key for a building lookup.
// Client-facing parameters arrive as floats from query strings; rounding
// them to fixed precision keeps representational jitter (5.0 vs
// 5.00000001) from fragmenting the cache. Rounding precision: lat/lon 4
// decimal places, radius 2, min size 1.
type QueryKey struct {
	Code    string
	Lat     float64
	Lon     float64
	Radius  float64 // km
	MinSize float64 // m2
}

// NewQueryKey rounds the query parameters into a stable key.
func NewQueryKey(a model.Airport, radiusKm, minAreaM2 float64) QueryKey {
	return QueryKey{
		Code:    a.Code,
		Lat:     roundTo(a.Lat, 4),
		Lon:     roundTo(a.Lon, 4),
		Radius:  roundTo(radiusKm, 2),
		MinSize: roundTo(minAreaM2, 1),
	}
}

// String renders the key for map lookup.
func (k QueryKey) String() string {
	return fmt.Sprintf("%s/%.4f/%.4f/%.2f/%.1f", k.Code, k.Lat, k.Lon, k.Radius, k.MinSize)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
