package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var airportsJSON bool

var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "List the supported airports",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cfg)
		if err != nil {
			return err
		}

		list := e.airports.All()

		if airportsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tCITY\tSTATE")
		for _, a := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Code, a.Name, a.City, a.State)
		}
		return w.Flush()
	},
}

func init() {
	airportsCmd.Flags().BoolVar(&airportsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(airportsCmd)
}
