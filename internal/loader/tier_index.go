package loader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/solar-scout/internal/model"
)

// indexTier serves lookups from the fully precomputed per-airport index:
// one JSON file per airport code with area and distance already computed,
// so filtering is a pure in-memory pass with no projection work. Built
// offline by `solar-scout index build`; preferred whenever present.
type indexTier struct {
	dir string
}

func (t *indexTier) name() string { return "index" }

func (t *indexTier) load(_ context.Context, q query) ([]model.BuildingRecord, error) {
	path := filepath.Join(t.dir, q.key.Code+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errTierUnavailable
		}
		return nil, eris.Wrapf(err, "loader: read index %s", path)
	}

	var all []model.BuildingRecord
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, eris.Wrapf(err, "loader: decode index %s", path)
	}

	out := make([]model.BuildingRecord, 0, len(all))
	for _, b := range all {
		if b.DistanceKM <= q.key.Radius && b.AreaM2 >= q.key.MinSize {
			out = append(out, b)
		}
	}

	model.SortByAreaDesc(out)
	if len(out) > q.maxBuildings {
		out = out[:q.maxBuildings]
	}
	return out, nil
}
