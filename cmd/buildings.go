package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/solar-scout/internal/solar"
)

var (
	buildingsRadius    float64
	buildingsMinSize   float64
	buildingsUsablePct float64
	buildingsNoITC     bool
)

var buildingsCmd = &cobra.Command{
	Use:   "buildings <airport-code>",
	Short: "Find large buildings near an airport and estimate solar potential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cfg)
		if err != nil {
			return err
		}

		airport, ok := e.airports.Get(args[0])
		if !ok {
			return eris.Errorf("unknown airport code %q", args[0])
		}

		buildings, err := e.loader.GetBuildingsNear(cmd.Context(), airport, buildingsRadius, buildingsMinSize)
		if err != nil {
			return err
		}

		params := solar.DefaultParams()
		params.UsableFraction = buildingsUsablePct
		params.IncludeITC = !buildingsNoITC

		q := queryParams{RadiusKM: buildingsRadius, MinSizeM2: buildingsMinSize, Solar: params}
		out := buildingsResponse{
			Airport:    airport,
			Parameters: q.echo(),
			Count:      len(buildings),
			Buildings:  make([]buildingWithSolar, 0, len(buildings)),
		}
		for _, b := range buildings {
			out.Buildings = append(out.Buildings, buildingWithSolar{
				BuildingRecord: b,
				Solar:          solar.Compute(b.AreaM2, airport.State, params),
			})
		}
		if len(buildings) > 0 {
			totals := solar.TotalsFor(buildings, airport.State, params)
			out.Totals = &totals
		}

		zap.L().Info("buildings found",
			zap.String("airport", airport.Code),
			zap.Int("count", len(buildings)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	buildingsCmd.Flags().Float64Var(&buildingsRadius, "radius", 5, "search radius in km")
	buildingsCmd.Flags().Float64Var(&buildingsMinSize, "min-size", 500, "minimum roof area in m2")
	buildingsCmd.Flags().Float64Var(&buildingsUsablePct, "usable-pct", 0.65, "usable fraction of roof area")
	buildingsCmd.Flags().BoolVar(&buildingsNoITC, "no-itc", false, "exclude the federal investment tax credit")
	rootCmd.AddCommand(buildingsCmd)
}
