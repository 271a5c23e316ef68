// Package cli provides the command-line interface for Skytint.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/skytint/internal/config"
	"github.com/jmylchreest/skytint/internal/festival"
	"github.com/jmylchreest/skytint/internal/logging"
	"github.com/jmylchreest/skytint/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	quiet   bool
	logJSON bool
}

// logger builds the command logger, writing to the command's error stream.
func (g *globalOptions) logger(cmd *cobra.Command) hclog.Logger {
	return logging.New(logging.Options{
		Name:    "skytint",
		Verbose: g.verbose,
		Quiet:   g.quiet,
		JSON:    g.logJSON,
		Output:  cmd.ErrOrStderr(),
	})
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "skytint",
		Short: "Readable colours and festival themes for travel cards",
		Long: `Skytint picks readable text colours for coloured backgrounds and finds the
city festivals that overlap selected travel dates, so booking cards can be
themed to match.

It can also derive full colour themes, extract palettes from logos and
artwork, generate festival artwork, and serve everything over HTTP.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "write logs as JSON")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newOnColourCmd(g),
		newFestivalsCmd(g),
		newThemeCmd(g),
		newExtractCmd(g),
		newArtworkCmd(g),
		newServeCmd(g),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// matcherFlags are shared by commands that look festivals up.
type matcherFlags struct {
	table     string
	cityMatch festival.CityMatch
}

func (m *matcherFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.table, "festivals", "", "festival table file (YAML or JSON, default: built-in)")
	cmd.Flags().Var(&m.cityMatch, "city-match", "city comparison (exact, fold)")
}

// matcher builds a Matcher, letting flags override the loaded configuration.
func (m *matcherFlags) matcher(cmd *cobra.Command, cfg config.Config, log hclog.Logger) (*festival.Matcher, error) {
	path := cfg.Festivals.TablePath
	if m.table != "" {
		path = m.table
	}
	mode := cfg.Festivals.CityMatch
	if cmd.Flags().Changed("city-match") {
		mode = m.cityMatch
	}

	table, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	log.Debug("festival table loaded", "path", path, "records", table.Len(), "city_match", mode)

	return festival.NewMatcher(table, festival.WithCityMatch(mode)), nil
}

// loadTable reads the table at path, or the built-in table when path is
// empty.
func loadTable(path string) (festival.Table, error) {
	if path == "" {
		return festival.DefaultTable()
	}
	return festival.LoadTable(path)
}

// addDateFlag registers the repeatable --date flag.
func addDateFlag(fs *pflag.FlagSet, dates *[]string) {
	fs.StringArrayVarP(dates, "date", "d", nil, "selected date as YYYY-MM-DD (repeat for a range)")
}
