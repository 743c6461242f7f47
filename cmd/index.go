package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/solar-scout/internal/model"
)

var (
	indexCodes   string
	indexRadius  float64
	indexMinSize float64
	indexWorkers int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the precomputed building index",
}

// The index is built at the widest query bounds so any narrower request can
// be answered by filtering it in memory.
var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Precompute per-airport building indexes from raw datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cfg)
		if err != nil {
			return err
		}

		targets := e.airports.All()
		if indexCodes != "" {
			var picked []model.Airport
			for _, c := range strings.Split(indexCodes, ",") {
				a, ok := e.airports.Get(c)
				if !ok {
					return eris.Errorf("unknown airport code %q", c)
				}
				picked = append(picked, a)
			}
			targets = picked
		}

		outDir := filepath.Join(cfg.Data.Dir, "airport_index")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrap(err, "create index directory")
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(indexWorkers)

		var built, failed atomic.Int64
		for _, airport := range targets {
			airport := airport
			g.Go(func() error {
				records, err := e.loader.BuildIndexRecords(ctx, airport, indexRadius, indexMinSize)
				if err != nil {
					zap.L().Warn("index build failed",
						zap.String("airport", airport.Code),
						zap.Error(err),
					)
					failed.Add(1)
					return nil
				}

				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return eris.Wrapf(err, "marshal index for %s", airport.Code)
				}
				path := filepath.Join(outDir, airport.Code+".json")
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return eris.Wrapf(err, "write index for %s", airport.Code)
				}

				zap.L().Info("index built",
					zap.String("airport", airport.Code),
					zap.Int("buildings", len(records)),
				)
				built.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("index build complete",
			zap.Int64("built", built.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	indexBuildCmd.Flags().StringVar(&indexCodes, "codes", "", "comma-separated airport codes (default all)")
	indexBuildCmd.Flags().Float64Var(&indexRadius, "radius", 20, "index radius in km")
	indexBuildCmd.Flags().Float64Var(&indexMinSize, "min-size", 100, "minimum roof area in m2")
	indexBuildCmd.Flags().IntVar(&indexWorkers, "workers", 4, "parallel airports")
	indexCmd.AddCommand(indexBuildCmd)
	rootCmd.AddCommand(indexCmd)
}
