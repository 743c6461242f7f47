package loader

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solar-scout/internal/model"
)

// Default bounds for the loader.
const (
	DefaultMaxBuildings = 5000
	DefaultCacheEntries = 64
	DefaultCacheTTL     = time.Hour
)

// Options configures a Loader.
type Options struct {
	MaxBuildings int           // cap on returned records; 0 means DefaultMaxBuildings
	CacheEntries int           // memoization capacity; 0 means DefaultCacheEntries
	CacheTTL     time.Duration // memoization TTL; 0 means DefaultCacheTTL
}

// Loader answers building lookups through the tier chain with bounded
// memoization. Construct one at process start and share it across requests;
// all methods are safe for concurrent use.
type Loader struct {
	tiers        []tier
	cache        *resultCache
	maxBuildings int
}

// New creates a Loader over the standard data layout under dataDir:
// airport_index/ (tier 1), airport_cache/ (tier 2), buildings/ (tier 3).
func New(dataDir string, opts Options) *Loader {
	if opts.MaxBuildings <= 0 {
		opts.MaxBuildings = DefaultMaxBuildings
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = DefaultCacheEntries
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	return &Loader{
		tiers: []tier{
			&indexTier{dir: filepath.Join(dataDir, "airport_index")},
			&airportTier{dir: filepath.Join(dataDir, "airport_cache")},
			&stateTier{dir: filepath.Join(dataDir, "buildings")},
		},
		cache:        newResultCache(opts.CacheEntries, opts.CacheTTL),
		maxBuildings: opts.MaxBuildings,
	}
}

// GetBuildingsNear returns the large-footprint buildings within radiusKm of
// the airport whose planar area is at least minAreaM2, sorted by area
// descending and capped at the configured maximum.
//
// Tiers are tried strictly in order and the first success wins. A failure
// in tiers 1 or 2 is logged and treated as "unavailable"; only the final
// tier's failure (missing state dataset, empty prefilter, or a read error)
// becomes the returned error. The error is never non-nil alongside a
// non-empty list.
//
// The returned slice is always an independent deep copy: callers may attach
// per-request annotations without affecting the memoized entry or any
// concurrent caller.
func (l *Loader) GetBuildingsNear(ctx context.Context, airport model.Airport, radiusKm, minAreaM2 float64) ([]model.BuildingRecord, error) {
	key := NewQueryKey(airport, radiusKm, minAreaM2)
	if cached, ok := l.cache.get(key.String()); ok {
		return cached, nil
	}

	q := query{airport: airport, key: key, maxBuildings: l.maxBuildings}
	last := len(l.tiers) - 1

	for i, t := range l.tiers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "loader: lookup aborted")
		}

		buildings, err := t.load(ctx, q)
		if err != nil {
			if i == last {
				return nil, err
			}
			if eris.Is(err, errTierUnavailable) {
				zap.L().Warn("tier unavailable",
					zap.String("tier", t.name()),
					zap.String("airport", airport.Code),
				)
			} else {
				zap.L().Warn("tier failed, falling through",
					zap.String("tier", t.name()),
					zap.String("airport", airport.Code),
					zap.Error(err),
				)
			}
			continue
		}

		zap.L().Debug("buildings resolved",
			zap.String("tier", t.name()),
			zap.String("airport", airport.Code),
			zap.Int("count", len(buildings)),
		)
		l.cache.put(key.String(), buildings)
		return buildings, nil
	}

	return nil, eris.New("loader: no data source configured")
}

// BuildIndexRecords computes records for the offline tier-1 index by
// running only the raw-geometry tiers, bypassing both the memoization layer
// and any existing index file.
func (l *Loader) BuildIndexRecords(ctx context.Context, airport model.Airport, radiusKm, minAreaM2 float64) ([]model.BuildingRecord, error) {
	q := query{
		airport:      airport,
		key:          NewQueryKey(airport, radiusKm, minAreaM2),
		maxBuildings: l.maxBuildings,
	}

	for i, t := range l.tiers {
		if i == 0 {
			continue // skip the index tier itself
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "loader: index build aborted")
		}

		buildings, err := t.load(ctx, q)
		if err != nil {
			if i == len(l.tiers)-1 {
				return nil, err
			}
			continue
		}
		return buildings, nil
	}

	return nil, eris.New("loader: no data source configured")
}

// CacheStats reports memoization counters.
func (l *Loader) CacheStats() CacheStats {
	return l.cache.stats()
}
