package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/artwork"
	"github.com/jmylchreest/skytint/internal/cache"
	"github.com/jmylchreest/skytint/internal/config"
	"github.com/jmylchreest/skytint/internal/festival"
)

func newArtworkCmd(g *globalOptions) *cobra.Command {
	var (
		city   string
		dates  []string
		dir    string
		aspect string
		format string
		dryRun bool
		mf     matcherFlags
	)

	cmd := &cobra.Command{
		Use:   "artwork",
		Short: "Generate artwork for festivals in a city",
		Long: `Generate a themed illustration for each festival in a city on the selected
dates using Gemini or Imagen, and extract a small palette from each image.

Results are cached by prompt, so repeated runs reuse existing artwork.

Environment:
  GOOGLE_API_KEY          Gemini API key (or GEMINI_API_KEY)
  SKYTINT_GENAI_BACKEND   gemini (default) or vertex
  GOOGLE_CLOUD_PROJECT    project for the vertex backend
  SKYTINT_GENAI_MODEL     image model (default: ` + config.DefaultGenAIModel + `)
  SKYTINT_CACHE           memory, file (default) or redis

Examples:
  skytint artwork --city Munich --date 2025-09-25
  skytint artwork --city Sydney --date 2025-05-24 --date 2025-06-02 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := g.logger(cmd)
			ctx := cmd.Context()

			if city == "" {
				return fmt.Errorf("--city is required")
			}
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

			festivals := matcher.ForSelection(city, sel)
			if len(festivals) == 0 {
				if !g.quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "No festivals in %s for the selected dates.\n", city)
				}
				return nil
			}

			if dryRun {
				for _, f := range festivals {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.Name, artwork.Prompt(f, city))
				}
				return nil
			}

			svc, closeStore, err := newArtworkService(ctx, cfg, artwork.Options{
				Dir:         dir,
				AspectRatio: aspect,
			}, log)
			if err != nil {
				return err
			}
			defer closeStore()

			arts, err := svc.ForFestivals(ctx, festivals, city)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(arts, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "table":
				table := NewTable("Festival", "Path", "Cached", "Palette")
				for _, a := range arts {
					hexes := make([]string, len(a.Swatches))
					for i, s := range a.Swatches {
						hexes[i] = s.Hex
					}
					table.AddRow(a.Festival, a.Path, fmt.Sprintf("%t", a.Cached), strings.Join(hexes, " "))
				}
				return table.Write(out)
			default:
				return fmt.Errorf("unsupported format: %s (valid formats: table, json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city to generate artwork for")
	addDateFlag(cmd.Flags(), &dates)
	cmd.Flags().StringVar(&dir, "dir", "", "directory for generated images (default: cache directory)")
	cmd.Flags().StringVar(&aspect, "aspect-ratio", artwork.DefaultAspectRatio, "image aspect ratio")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print prompts without generating")
	mf.register(cmd)

	return cmd
}

// newArtworkService wires the cache, the Gen AI client and the artwork
// service from configuration. The returned func closes the cache.
func newArtworkService(ctx context.Context, cfg config.Config, opts artwork.Options, log hclog.Logger) (*artwork.Service, func(), error) {
	if !cfg.GenAI.Enabled() {
		return nil, nil, fmt.Errorf("artwork generation is not configured: set GOOGLE_API_KEY, or GOOGLE_CLOUD_PROJECT with SKYTINT_GENAI_BACKEND=vertex")
	}

	store, err := cache.Open(ctx, cfg.Cache.Options())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close cache", "error", err)
		}
	}

	gen, err := artwork.NewGenAIGenerator(ctx, artwork.GenAIOptions{
		APIKey:   cfg.GenAI.APIKey,
		Model:    cfg.GenAI.Model,
		Vertex:   cfg.GenAI.Backend == config.BackendVertexAI,
		Project:  cfg.GenAI.Project,
		Location: cfg.GenAI.Location,
		Logger:   log,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	opts.TTL = cfg.Cache.TTL
	opts.Logger = log
	svc, err := artwork.NewService(gen, store, opts)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	log.Debug("artwork service ready", "cache", cfg.Cache.Backend, "model", cfg.GenAI.Model)
	return svc, closeStore, nil
}
