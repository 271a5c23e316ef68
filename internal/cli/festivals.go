package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/config"
	"github.com/jmylchreest/skytint/internal/festival"
)

type festivalView struct {
	festival.Festival
	City     string `json:"city"`
	OnColour string `json:"onColour"`
}

func newFestivalsCmd(g *globalOptions) *cobra.Command {
	var (
		city    string
		dates   []string
		format  string
		preview bool
		mf      matcherFlags
	)

	cmd := &cobra.Command{
		Use:   "festivals",
		Short: "List festivals in a city during selected dates",
		Long: `List the festivals taking place in a city on the selected dates.

Pass --date once for a single day or twice for a range. Two dates with the
second before the first are treated as two separate days. Without --date
nothing is selected and the list is empty.

Examples:
  skytint festivals --city Munich --date 2025-09-25
  skytint festivals --city munich --city-match fold --date 2025-09-28 --date 2025-10-02
  skytint festivals --city Sydney --date 2025-06-01 -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := g.logger(cmd)

			if city == "" {
				return fmt.Errorf("--city is required")
			}
			// No dates selects no days, so the result is empty.
			var found []festival.Festival
			if len(dates) > 0 {
				sel, err := festival.ParseSelection(dates)
				if err != nil {
					return err
				}

				cfg, err := config.Load()
				if err != nil {
					return err
				}
				matcher, err := mf.matcher(cmd, cfg, log)
				if err != nil {
					return err
				}

				found = matcher.ForSelection(city, sel)
				log.Debug("festivals matched", "city", city, "days", len(sel.Days()), "count", len(found))
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				views := make([]festivalView, len(found))
				for i, f := range found {
					views[i] = festivalView{Festival: f, City: f.City(), OnColour: f.OnColour()}
				}
				data, err := json.MarshalIndent(views, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "table":
				if len(found) == 0 {
					if !g.quiet {
						fmt.Fprintf(out, "No festivals in %s for the selected dates.\n", city)
					}
					return nil
				}
				table := NewTable("Festival", "Location", "Days", "Type", "Colour", "On")
				for _, f := range found {
					col := f.Color.String()
					if preview {
						col = colour.SamplePreview(f.Color, "Aa", 4) + " " + col
					}
					table.AddRow(f.Name, f.Location, fmt.Sprintf("%d-%d", f.StartDay, f.EndDay), f.Type, col, f.OnColour())
				}
				table.SetColumnMaxWidth(4, 32)
				return table.Write(out)
			default:
				return fmt.Errorf("unsupported format: %s (valid formats: table, json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city to search")
	addDateFlag(cmd.Flags(), &dates)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show colour previews in terminal")
	mf.register(cmd)

	return cmd
}
