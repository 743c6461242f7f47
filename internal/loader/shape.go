package loader

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// readShapefile streams a state shapefile, keeping polygon records whose
// shapefile bounding box overlaps the query box. Non-polygon and malformed
// records are skipped, never fatal.
func (t *stateTier) readShapefile(path string, box boundingBox) ([]geom.T, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	var geoms []geom.T
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		sb := poly.BBox()
		if sb.MinX > box.maxLon || sb.MaxX < box.minLon || sb.MinY > box.maxLat || sb.MaxY < box.minLat {
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}
		geoms = append(geoms, mp)
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return geoms, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
//
// Shapefile parts carry no explicit exterior/hole marker; winding order is
// the contract: exterior rings run clockwise, hole rings counter-clockwise.
// Each exterior ring starts a new polygon and subsequent hole rings attach
// to it as interior rings, so hole area never counts toward roof area and
// the geometry matches the same footprint served as GeoJSON. A hole ring
// with no preceding exterior is dropped.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("loader: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if ringSignedArea(flat) < 0 {
			// Clockwise: exterior ring, starts a new polygon.
			flush()
			poly := geom.NewPolygon(geom.XY)
			if err := poly.Push(ring); err != nil {
				zap.L().Debug("loader: skipping malformed exterior ring", zap.Int32("part", i), zap.Error(err))
				continue
			}
			current = poly
			continue
		}

		// Counter-clockwise: hole in the current exterior.
		if current == nil {
			zap.L().Debug("loader: dropping orphan hole ring", zap.Int32("part", i))
			continue
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("loader: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ringSignedArea is the shoelace sum over a flat XY ring; negative for
// clockwise winding.
func ringSignedArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
