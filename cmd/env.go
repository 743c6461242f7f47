package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solar-scout/internal/airports"
	"github.com/sells-group/solar-scout/internal/config"
	"github.com/sells-group/solar-scout/internal/loader"
)

// env holds the shared long-lived components behind every command.
type env struct {
	airports *airports.Registry
	loader   *loader.Loader
}

// initEnv loads the airport registry and wires the tiered building loader
// from configuration.
func initEnv(c *config.Config) (*env, error) {
	reg, err := airports.LoadFile(c.Data.AirportsFile)
	if err != nil {
		return nil, eris.Wrap(err, "load airport registry")
	}

	l := loader.New(c.Data.Dir, loader.Options{
		MaxBuildings: c.Query.MaxBuildings,
		CacheEntries: c.Cache.MaxEntries,
		CacheTTL:     time.Duration(c.Cache.TTLSecs) * time.Second,
	})

	zap.L().Info("environment ready",
		zap.Int("airports", reg.Len()),
		zap.String("data_dir", c.Data.Dir),
	)

	return &env{airports: reg, loader: l}, nil
}
