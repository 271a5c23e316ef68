package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/skytint/internal/artwork"
	"github.com/jmylchreest/skytint/internal/config"
	"github.com/jmylchreest/skytint/internal/server"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var (
		listen       string
		allowOrigins []string
		noArtwork    bool
		mf           matcherFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the colour and festival API over HTTP",
		Long: `Serve the on-colour, festival, theme and artwork endpoints for the browser
frontend. Artwork is only served when Gen AI credentials are configured.

Endpoints:
  GET  /healthz
  GET  /api/on-colour?bg=%23F2C94C
  GET  /api/festivals?city=Munich&date=2025-09-25
  POST /api/theme
  POST /api/artwork

Examples:
  skytint serve
  skytint serve --listen :9000 --allow-origin https://ife.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := g.logger(cmd)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			matcher, err := mf.matcher(cmd, cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := server.Options{
				Matcher:         matcher,
				ArtworkPerMin:   cfg.Server.ArtworkPerMin,
				AllowOrigins:    allowOrigins,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				Logger:          log,
			}

			switch {
			case noArtwork:
				log.Info("artwork endpoint disabled by flag")
			case !cfg.GenAI.Enabled():
				log.Info("artwork endpoint disabled, no Gen AI credentials configured")
			default:
				svc, closeStore, err := newArtworkService(ctx, cfg, artwork.Options{}, log)
				if err != nil {
					return err
				}
				defer closeStore()
				opts.Artwork = svc
			}

			return server.New(opts).ListenAndServe(ctx, cfg.Server.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: "+config.DefaultListen+")")
	cmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil, "allowed CORS origin (repeatable, default: any)")
	cmd.Flags().BoolVar(&noArtwork, "no-artwork", false, "disable the artwork endpoint")
	mf.register(cmd)

	return cmd
}
