package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/config"
	"github.com/jmylchreest/skytint/internal/festival"
	"github.com/jmylchreest/skytint/internal/theme"
)

func newThemeCmd(g *globalOptions) *cobra.Command {
	var (
		spec   theme.Spec
		format string
		output string
		mf     matcherFlags
	)

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Derive a colour theme with festival cards",
		Long: `Derive a colour theme from a primary colour and emit it as CSS custom
properties or JSON. Every token carries its readable on-colour.

With --city and --date, a card style is added for each matching festival.

Examples:
  skytint theme --name default --primary '#1E72AE'
  skytint theme --name dark --primary '#F2C94C' --background '#111111' -f json
  skytint theme --name munich --primary '#1E72AE' --city Munich --date 2025-09-25 -o theme.css`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := g.logger(cmd)

			if err := theme.Validate(spec); err != nil {
				return err
			}

			var festivals []festival.Festival
			if spec.City != "" && len(spec.Dates) > 0 {
				sel, err := festival.ParseSelection(spec.Dates)
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
				festivals = matcher.ForSelection(spec.City, sel)
				log.Debug("festival cards", "city", spec.City, "count", len(festivals))
			}

			t, err := theme.Derive(spec, festivals)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "css":
				data, err = theme.RenderCSS(t)
			case "json":
				data, err = theme.RenderJSON(t)
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported format: %s (valid formats: css, json)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil { // #nosec G306 - theme output is not sensitive
				return fmt.Errorf("failed to write theme: %w", err)
			}
			log.Info("theme written", "path", output, "cards", len(t.Cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Name, "name", "skytint", "theme name")
	cmd.Flags().StringVar(&spec.Primary, "primary", "", "primary colour (hex or CSS gradient)")
	cmd.Flags().StringVar(&spec.Secondary, "secondary", "", "secondary colour (default: darker primary)")
	cmd.Flags().StringVar(&spec.Background, "background", "", "page background (default: white)")
	cmd.Flags().StringVar(&spec.City, "city", "", "city whose festivals get card styles")
	addDateFlag(cmd.Flags(), &spec.Dates)
	cmd.Flags().StringVarP(&format, "format", "f", "css", "output format (css, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	mf.register(cmd)

	return cmd
}
