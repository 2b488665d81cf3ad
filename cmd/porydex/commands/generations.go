package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/store"
)

// GenerationsCmd lists the generation registry
var GenerationsCmd = &cobra.Command{
	Use:   "generations [store-uri]",
	Short: "List generations in release order",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerations,
}

func init() {
	GenerationsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func runGenerations(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, err := openDatabase(ctx, cfg, args)
	if err != nil {
		return err
	}
	defer d.Close()

	registry, err := store.Open(d, storeLogger(cmd)).Registry(ctx)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), registry.All())
	}

	data := [][]string{{"ID", "Identifier", "Release", "Series"}}
	for _, g := range registry.All() {
		series := "base"
		if !g.IsBaseSeries {
			series = "side"
		}
		data = append(data, []string{
			strconv.Itoa(int(g.ID)),
			g.Identifier,
			strconv.Itoa(g.ReleaseOrder),
			series,
		})
	}
	return renderTable(cmd.OutOrStdout(), data)
}
