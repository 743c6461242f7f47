// Package loader resolves building lookups near an airport through a
// prioritized chain of data tiers: a fully precomputed per-airport index, a
// per-airport raw-geometry cache, and the raw state-level footprint
// dataset. The first tier that can answer wins; results are memoized in a
// bounded LRU and only ever handed out as deep copies.
package loader

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/solar-scout/internal/geometry"
	"github.com/sells-group/solar-scout/internal/model"
)

// errTierUnavailable signals silent fallthrough to the next tier. Any other
// error from the final tier is terminal and surfaces to the caller.
var errTierUnavailable = eris.New("tier unavailable")

// query carries the normalized parameters through a single lookup.
type query struct {
	airport      model.Airport
	key          QueryKey
	maxBuildings int
}

// tier is one lookup strategy in the fallback chain.
type tier interface {
	name() string
	load(ctx context.Context, q query) ([]model.BuildingRecord, error)
}

// evaluateAll runs the projection/filter pipeline over candidate
// geometries, then sorts by area descending and caps the result. One
// projector is constructed per call and reused for every geometry.
func evaluateAll(q query, geoms []geom.T) []model.BuildingRecord {
	proj := geometry.NewProjector(q.key.Lon, q.key.Lat)
	refX, refY := proj.ToPlanar(q.key.Lon, q.key.Lat)
	radiusM := q.key.Radius * 1000

	out := make([]model.BuildingRecord, 0, len(geoms))
	for _, g := range geoms {
		rec, ok := geometry.Evaluate(proj, refX, refY, g, radiusM, q.key.MinSize)
		if !ok {
			continue
		}
		out = append(out, *rec)
	}

	model.SortByAreaDesc(out)
	if len(out) > q.maxBuildings {
		out = out[:q.maxBuildings]
	}
	return out
}

// decodeFeatureGeometries extracts the geometries from GeoJSON
// FeatureCollection bytes. Features without geometry are skipped.
func decodeFeatureGeometries(data []byte) ([]geom.T, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "loader: decode feature collection")
	}
	geoms := make([]geom.T, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		geoms = append(geoms, f.Geometry)
	}
	return geoms, nil
}
