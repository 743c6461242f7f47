package loader

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/solar-scout/internal/model"
)

// degPerKM converts kilometers to degrees for bounding-box prefilters; the
// fixed 111 km/degree approximation is intentionally coarse because the box
// carries a 1.5x safety margin.
const degPerKM = 1.0 / 111.0

// stateTier is the slowest path: the raw statewide building-footprint
// dataset, prefiltered by a generous bounding box before the full filter
// pipeline. Accepts plain GeoJSON, zipped GeoJSON, or a shapefile. Unlike
// the earlier tiers, its failures are terminal: a missing state file or an
// empty prefilter result is the error the caller sees.
type stateTier struct {
	dir string
}

func (t *stateTier) name() string { return "state" }

// boundingBox is a geographic lon/lat rectangle.
type boundingBox struct {
	minLon, minLat, maxLon, maxLat float64
}

func queryBoundingBox(lat, lon, radiusKm float64) boundingBox {
	buffer := radiusKm * degPerKM * 1.5
	return boundingBox{
		minLon: lon - buffer,
		minLat: lat - buffer,
		maxLon: lon + buffer,
		maxLat: lat + buffer,
	}
}

// intersectsEnvelope reports whether a geometry's envelope overlaps the box.
func (b boundingBox) intersectsEnvelope(g geom.T) bool {
	if g == nil || len(g.FlatCoords()) == 0 {
		return false
	}
	bounds := g.Bounds()
	return bounds.Min(0) <= b.maxLon && bounds.Max(0) >= b.minLon &&
		bounds.Min(1) <= b.maxLat && bounds.Max(1) >= b.minLat
}

func (t *stateTier) load(_ context.Context, q query) ([]model.BuildingRecord, error) {
	state := q.airport.State
	base := filepath.Join(t.dir, strings.ReplaceAll(state, " ", ""))
	box := queryBoundingBox(q.key.Lat, q.key.Lon, q.key.Radius)

	var (
		geoms []geom.T
		err   error
	)
	switch {
	case fileExists(base + ".geojson"):
		geoms, err = t.readGeoJSON(base+".geojson", box)
	case fileExists(base + ".geojson.zip"):
		geoms, err = t.readZippedGeoJSON(base+".geojson.zip", box)
	case fileExists(base + ".shp"):
		geoms, err = t.readShapefile(base+".shp", box)
	default:
		return nil, eris.Errorf("Building data not available for %s", state)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "loader: load state dataset for %s", state)
	}

	if len(geoms) == 0 {
		return nil, eris.New("No buildings found in this area")
	}

	return evaluateAll(q, geoms), nil
}

func (t *stateTier) readGeoJSON(path string, box boundingBox) ([]geom.T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return t.prefilter(data, box)
}

// readZippedGeoJSON reads the first .geojson entry from a compressed state
// archive.
func (t *stateTier) readZippedGeoJSON(path string, box boundingBox) ([]geom.T, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open zip %s", path)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".geojson") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "read zip entry %s", f.Name)
		}
		return t.prefilter(data, box)
	}
	return nil, eris.Errorf("no .geojson entry in %s", path)
}

func (t *stateTier) prefilter(data []byte, box boundingBox) ([]geom.T, error) {
	geoms, err := decodeFeatureGeometries(data)
	if err != nil {
		return nil, err
	}
	kept := geoms[:0]
	for _, g := range geoms {
		if box.intersectsEnvelope(g) {
			kept = append(kept, g)
		}
	}
	return kept, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
