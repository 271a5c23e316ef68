package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/image"
)

func newExtractCmd(g *globalOptions) *cobra.Command {
	var (
		colours     int
		algorithm   string
		format      string
		output      string
		seed        int64
		showPreview bool
	)

	cmd := &cobra.Command{
		Use:   "extract <image|url>",
		Short: "Extract a colour palette from a logo or artwork",
		Long: `Extract the dominant colours of an image, each with its readable on-colour.

The image may be a local file or an http(s) URL, such as an airline logo.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract 5 colours (default)
  skytint extract logo.png

  # Extract 3 colours with previews
  skytint extract --preview -c 3 https://example.com/logo.webp

  # Reproducible JSON output
  skytint extract --seed 42 -f json artwork.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := g.logger(cmd)
			path := args[0]

			if !image.IsURL(path) && !image.IsImageFile(path) {
				return fmt.Errorf("unsupported image file: %s (supported: %s)",
					path, strings.Join(image.SupportedImageExtensions(), ", "))
			}

			cfg := colour.ExtractorConfig{
				Algorithm:  colour.Algorithm(algorithm),
				ColorCount: colours,
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log.Debug("loading image", "path", path)
			img, err := image.NewSmartLoader().Load(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}
			bounds := img.Bounds()
			log.Debug("image loaded", "width", bounds.Dx(), "height", bounds.Dy())

			opts := colour.ExtractorOptions{}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			extractor, err := colour.NewExtractor(cfg.Algorithm, opts)
			if err != nil {
				return fmt.Errorf("failed to create extractor: %w", err)
			}

			palette, err := extractor.Extract(img, cfg.ColorCount)
			if err != nil {
				return fmt.Errorf("failed to extract colours: %w", err)
			}
			log.Debug("palette extracted", "colours", palette.Len(), "algorithm", cfg.Algorithm)

			text, err := formatPalette(palette, format, showPreview)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
				return fmt.Errorf("failed to write output file: %w", err)
			}
			log.Info("palette written", "path", output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&colours, "colours", "c", colour.DefaultExtractorConfig().ColorCount, "number of colours to extract")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(colour.AlgorithmKMeans), "extraction algorithm (kmeans)")
	cmd.Flags().StringVarP(&format, "format", "f", "hex", "output format (hex, rgb, json, table)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible extraction")
	cmd.Flags().BoolVar(&showPreview, "preview", false, "show colour previews in terminal")

	return cmd
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	swatches := palette.Swatches()

	var b strings.Builder
	switch format {
	case "hex":
		for _, s := range swatches {
			if showPreview {
				b.WriteString(colour.FormatColourWithPreview(s.RGB, 8) + "\n")
				continue
			}
			b.WriteString(s.Hex + "\n")
		}
	case "rgb":
		for _, s := range swatches {
			if showPreview {
				b.WriteString(colour.ColourPreview(s.RGB, 8) + "  ")
			}
			b.WriteString(s.RGB.String() + "\n")
		}
	case "json":
		data, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		b.Write(data)
		b.WriteByte('\n')
	case "table":
		table := NewTable("Hex", "Weight", "On", "Contrast")
		for _, s := range swatches {
			hex := s.Hex
			if showPreview {
				hex = colour.SamplePreview(colour.ParseColourValue(s.Hex), "Aa", 4) + " " + hex
			}
			table.AddRow(hex, fmt.Sprintf("%.1f%%", s.Weight*100), s.OnColour, fmt.Sprintf("%.2f", s.Contrast))
		}
		b.WriteString(table.Render())
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
	}
	return b.String(), nil
}
