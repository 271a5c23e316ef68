package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/colour"
)

type onColourResult struct {
	Background string  `json:"background"`
	Kind       string  `json:"kind"`
	OnColour   string  `json:"onColour"`
	Contrast   float64 `json:"contrast"`
}

func newOnColourCmd(g *globalOptions) *cobra.Command {
	var (
		format  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:     "oncolour <background>...",
		Aliases: []string{"oncolor", "on-colour", "on-color"},
		Short:   "Pick black or white text for a background",
		Long: `Pick the readable text colour (#000000 or #FFFFFF) for each background.

A background is a #RRGGBB hex colour or a CSS gradient, in which case the
first hex stop is used. Anything else falls back to white text.

Examples:
  skytint oncolour '#F2C94C'
  skytint oncolour --preview '#1A237E' 'linear-gradient(90deg, #FF5F6D, #FFC371)'
  skytint oncolour -f json '#808080'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := g.logger(cmd)

			results := make([]onColourResult, len(args))
			for i, bg := range args {
				v := colour.ParseColourValue(bg)
				results[i] = onColourResult{
					Background: bg,
					Kind:       v.Kind.String(),
					OnColour:   colour.ReadableOn(v),
					Contrast:   colour.OnColourContrast(bg),
				}
				if v.Kind == colour.KindInvalid {
					log.Debug("unrecognised background, using fallback", "background", bg)
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				for _, r := range results {
					line := fmt.Sprintf("%s\t%s", r.Background, r.OnColour)
					if preview {
						line = colour.SamplePreview(colour.ParseColourValue(r.Background), "Aa", 6) + " " + line
					}
					fmt.Fprintln(out, line)
				}
			case "json":
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "table":
				table := NewTable("Background", "Kind", "On", "Contrast")
				table.SetColumnMaxWidth(0, 40)
				for _, r := range results {
					bg := r.Background
					if preview {
						bg = colour.SamplePreview(colour.ParseColourValue(r.Background), "Aa", 6) + " " + bg
					}
					table.AddRow(bg, r.Kind, r.OnColour, fmt.Sprintf("%.2f", r.Contrast))
				}
				return table.Write(out)
			default:
				return fmt.Errorf("unsupported format: %s (valid formats: text, json, table)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, table)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show colour previews in terminal")

	return cmd
}
