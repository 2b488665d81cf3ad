package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/dex"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
	"github.com/teranos/porydex/store"
)

// ShowCmd resolves one entity under a session
var ShowCmd = &cobra.Command{
	Use:   "show <kind> <identifier>",
	Short: "Show an entity's current snapshot",
	Long: `Resolve one entity to its current generation and print that snapshot.

Resolution runs twice, once over the in-memory catalog and once as a query
against the store; the command fails if the two disagree.

Examples:
  porydex show form raichu-alola
  porydex show pokemon pikachu -g red-blue
  porydex show move thunderbolt --json`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	addSessionFlags(ShowCmd)
}

// shown is the JSON form of show's output.
type shown struct {
	Kind string `json:"kind"`
	dex.Entry
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kind, err := schema.KindByName(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, st, closeStore, err := openCatalog(cmd, cfg)
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
	languages := cfg.Languages()
	entry, ok := browser.Find(args[1], session, languages)
	if !ok {
		return errors.WithHintf(errors.Newf("no %s named %q", kind.Name, args[1]),
			"list them with: porydex list %s", kind.Name)
	}

	queried, present, err := st.ResolveOne(ctx, kind, entry.Key, store.ForSession(kind, session).Pin)
	if err != nil {
		return err
	}
	if present != entry.Present || (present && queried != entry.Generation.ID) {
		return errors.Newf("%s %s resolves to generation %d in the store but %d in memory",
			kind.Name, entry.Identifier, queried, entry.Generation.ID)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), shown{Kind: kind.Name, Entry: entry})
	}
	return printEntry(cmd.OutOrStdout(), d, kind, entry, session, languages)
}

func printEntry(w io.Writer, d *dex.Dex, kind *schema.Kind, e dex.Entry, session *catalog.Session, languages []catalog.LanguageID) error {
	title := e.Identifier
	if e.Name != "" {
		title = fmt.Sprintf("%s (%s)", e.Name, e.Identifier)
	}
	fmt.Fprintf(w, "%s %s %s\n", pterm.Bold.Sprint(kind.Name), keyString(e.Key), title)

	if !e.Present {
		fmt.Fprintf(w, "  absent in %s\n", sessionLabel(session))
		return nil
	}
	fmt.Fprintf(w, "  generation: %s\n", e.Generation)

	for _, line := range describe(d, e, languages) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// describe renders a snapshot's attributes with localized names.
func describe(d *dex.Dex, e dex.Entry, languages []catalog.LanguageID) []string {
	var lines []string
	switch snap := e.Snapshot.(type) {
	case *dex.SpeciesSnapshot:
		forms := make([]string, len(snap.Forms))
		for i, id := range snap.Forms {
			forms[i] = d.Forms.Label(schema.FormKey{PokemonID: e.Key[0], FormID: id}, languages)
		}
		lines = append(lines, "forms: "+strings.Join(forms, ", "))

	case *dex.FormSnapshot:
		types := make([]string, len(snap.Types))
		for i, id := range snap.Types {
			types[i] = d.Types.Label(id, languages)
		}
		lines = append(lines, "types: "+strings.Join(types, " / "))

		for _, a := range snap.Abilities {
			lines = append(lines, fmt.Sprintf("%s: %s", a.Slot, d.Abilities.Label(a.Ability, languages)))
		}
		for _, s := range snap.Stats {
			line := fmt.Sprintf("%s: %d", d.Stats.Label(s.Stat, languages), s.Base)
			if s.Effort != nil && *s.Effort > 0 {
				line += fmt.Sprintf(" (+%d EV)", *s.Effort)
			}
			lines = append(lines, line)
		}

		if len(snap.EggGroups) > 0 {
			groups := make([]string, len(snap.EggGroups))
			for i, id := range snap.EggGroups {
				groups[i] = eggGroupLabel(d, id, languages)
			}
			lines = append(lines, "egg groups: "+strings.Join(groups, ", "))
		}

	case *dex.TypeSnapshot:
		if snap.Chart != "" {
			lines = append(lines, "type chart: "+snap.Chart)
		}
		// neutral matchups are not listed
		byResult := make(map[string][]string)
		for _, m := range snap.Matchups {
			byResult[m.Result] = append(byResult[m.Result], d.Types.Label(m.Defending, languages))
		}
		for _, result := range []string{"super_effective", "not_very_effective", "no_effect"} {
			if targets := byResult[result]; len(targets) > 0 {
				lines = append(lines, fmt.Sprintf("%s against: %s", strings.ReplaceAll(result, "_", " "), strings.Join(targets, ", ")))
			}
		}

	case *dex.MoveSnapshot:
		for _, m := range snap.Machines {
			game := fmt.Sprint(m.Game)
			if g, ok := d.Game(m.Game); ok {
				game = g.Identifier
			}
			lines = append(lines, fmt.Sprintf("%s: %s", game, m))
		}
	}
	return lines
}

func eggGroupLabel(d *dex.Dex, id schema.ID, languages []catalog.LanguageID) string {
	if name, ok := d.EggGroupNames.Default(id, languages); ok {
		return name.Name
	}
	for _, g := range d.EggGroups {
		if g.ID == id {
			return g.Identifier
		}
	}
	return fmt.Sprint(id)
}
