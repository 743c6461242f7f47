package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/solar-scout/internal/model"
)

// Evaluate decides whether one candidate geometry belongs in the result set
// for a query centered on the projected reference point (refX, refY).
//
// Distance is checked before area so out-of-radius buildings never pay for
// ring projection. Area is the shoelace area of each projected exterior
// ring; interior holes are not subtracted, matching the upstream dataset
// semantics.
//
// Returned records carry fixed-precision fields (area 1 dp, distance 3 dp,
// centroid 6 dp): a stability contract for cache keys and reproducible
// tests, not display formatting.
func Evaluate(proj *Projector, refX, refY float64, g geom.T, radiusM, minAreaM2 float64) (*model.BuildingRecord, bool) {
	if g == nil || len(g.FlatCoords()) == 0 {
		return nil, false
	}

	lon, lat, ok := Centroid(g)
	if !ok {
		return nil, false
	}

	cx, cy := proj.ToPlanar(lon, lat)
	dist := math.Hypot(cx-refX, cy-refY)
	if dist > radiusM {
		return nil, false
	}

	area, ok := PlanarArea(proj, g)
	if !ok || area < minAreaM2 {
		return nil, false
	}

	raw, err := geojson.Marshal(g)
	if err != nil {
		return nil, false
	}

	return &model.BuildingRecord{
		Geometry:   raw,
		AreaM2:     roundTo(area, 1),
		DistanceKM: roundTo(dist/1000, 3),
		Lat:        roundTo(lat, 6),
		Lon:        roundTo(lon, 6),
	}, true
}

// Centroid returns the geographic centroid of a Polygon or MultiPolygon,
// computed over exterior rings only. Any other geometry type is rejected.
func Centroid(g geom.T) (lon, lat float64, ok bool) {
	switch gg := g.(type) {
	case *geom.Polygon:
		if gg.NumLinearRings() == 0 {
			return 0, 0, false
		}
		lon, lat = ringCentroid(gg.LinearRing(0).Coords())
		return lon, lat, true
	case *geom.MultiPolygon:
		var sumLon, sumLat, sumW float64
		for i := 0; i < gg.NumPolygons(); i++ {
			poly := gg.Polygon(i)
			if poly.NumLinearRings() == 0 {
				continue
			}
			coords := poly.LinearRing(0).Coords()
			cLon, cLat := ringCentroid(coords)
			w := math.Abs(shoelace(coords))
			if w == 0 {
				w = 1e-12
			}
			sumLon += cLon * w
			sumLat += cLat * w
			sumW += w
		}
		if sumW == 0 {
			return 0, 0, false
		}
		return sumLon / sumW, sumLat / sumW, true
	default:
		return 0, 0, false
	}
}

// PlanarArea projects every exterior-ring vertex and sums the shoelace
// areas, in square meters. Returns ok=false for non-areal geometry.
func PlanarArea(proj *Projector, g geom.T) (float64, bool) {
	switch gg := g.(type) {
	case *geom.Polygon:
		if gg.NumLinearRings() == 0 {
			return 0, false
		}
		return math.Abs(shoelace(projectRing(proj, gg.LinearRing(0).Coords()))), true
	case *geom.MultiPolygon:
		var sum float64
		for i := 0; i < gg.NumPolygons(); i++ {
			poly := gg.Polygon(i)
			if poly.NumLinearRings() == 0 {
				continue
			}
			sum += math.Abs(shoelace(projectRing(proj, poly.LinearRing(0).Coords())))
		}
		return sum, true
	default:
		return 0, false
	}
}

// projectRing maps a geographic ring to planar coordinates.
func projectRing(proj *Projector, ring []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, len(ring))
	for i, c := range ring {
		x, y := proj.ToPlanar(c[0], c[1])
		out[i] = geom.Coord{x, y}
	}
	return out
}

// shoelace returns the signed area of a ring. The closing edge is implied
// when the ring is not explicitly closed.
func shoelace(ring []geom.Coord) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// ringCentroid is the area centroid of a single ring, falling back to the
// vertex mean for degenerate (zero-area) rings.
func ringCentroid(ring []geom.Coord) (x, y float64) {
	a := shoelace(ring)
	if math.Abs(a) < 1e-12 {
		var sx, sy float64
		for _, c := range ring {
			sx += c[0]
			sy += c[1]
		}
		n := float64(len(ring))
		if n == 0 {
			return 0, 0
		}
		return sx / n, sy / n
	}

	var cx, cy float64
	for i := range ring {
		j := (i + 1) % len(ring)
		cross := ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
		cx += (ring[i][0] + ring[j][0]) * cross
		cy += (ring[i][1] + ring[j][1]) * cross
	}
	return cx / (6 * a), cy / (6 * a)
}

// roundTo rounds to a fixed number of decimal places.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
