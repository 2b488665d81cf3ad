package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/schema"
)

// ListCmd lists the entities of one kind visible under a session
var ListCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List the entities of a kind visible in a generation",
	Long: `List every entity of a kind that exists in the pinned generation, with the
generation each resolves to. Unpinned, every entity of the kind is listed;
entities without any snapshot are shown with no generation.

Kinds: pokemon, form, type, ability, move, stat

Examples:
  porydex list type                 # unpinned
  porydex list form -g sun-moon
  porydex list move -g 1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	addSessionFlags(ListCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := schema.KindByName(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, _, closeStore, err := openCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := openSession(cmd, d, cfg)
	if err != nil {
		return err
	}
	browser, err := d.Browse(kind)
	if err != nil {
		return err
	}
	entries := browser.Entries(session, cfg.Languages())

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		pterm.Warning.Printf("No %s exists in %s\n", kind.Name, sessionLabel(session))
		return nil
	}
	data := [][]string{{"Key", "Identifier", "Name", "Generation"}}
	for _, e := range entries {
		data = append(data, []string{keyString(e.Key), e.Identifier, e.Name, e.Generation.Identifier})
	}
	if err := renderTable(cmd.OutOrStdout(), data); err != nil {
		return err
	}
	pterm.Info.Printf("%d of %d %s entities in %s\n", len(entries), browser.Len(), kind.Name, sessionLabel(session))
	return nil
}

func keyString(key []int64) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, "/")
}
