package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rendis/gofind/internal/config"
	"github.com/rendis/gofind/internal/engine/gateway"
	"github.com/rendis/gofind/internal/engine/render"
	"github.com/rendis/gofind/internal/logging"
	"github.com/rendis/gofind/internal/model"
	"github.com/rendis/gofind/internal/tui"
)

var version = "dev"

// env is what every command gets after the persistent pre-run.
type env struct {
	cfg *config.Config
	log logging.Logger
	reg *prometheus.Registry
}

type envKey struct{}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}

func (e *env) gateway() *gateway.Gateway {
	g := e.cfg.Gateway
	return gateway.New(gateway.Options{
		CountriesURL:   g.CountriesURL,
		BoundariesURL:  g.BoundariesURL,
		LookupURL:      g.LookupURL,
		Timeout:        g.Timeout,
		TLSFingerprint: g.TLSFingerprint,
		ProxyURL:       g.ProxyURL,
		Logger:         e.log,
		Registerer:     e.reg,
	})
}

func newRootCmd() *cobra.Command {
	var configPath, logLevel string

	root := &cobra.Command{
		Use:     "gofind",
		Short:   "Spin a terminal globe and browse the world's countries",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			log.Debug("config loaded", logging.String("path", configPath), logging.String("command", cmd.Name()))

			e := &env{cfg: cfg, log: log, reg: prometheus.NewRegistry()}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e := envFrom(cmd); e != nil {
				_ = e.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(envFrom(cmd))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default: "+config.DefaultPath()+")")
	pf.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newListCmd(),
		newLookupCmd(),
		newExportCmd(),
		newTokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "gofind "+version)
			},
		},
	)
	return root
}

func runTUI(e *env) error {
	e.log.Info("starting tui",
		logging.String("version", version),
		logging.Float64("speed", e.cfg.Render.Speed),
		logging.Float64("altitude", e.cfg.Render.Altitude),
	)
	loop := render.NewLoop(render.Options{
		Speed:      e.cfg.Render.Speed,
		Interval:   e.cfg.Render.FrameInterval(),
		Registerer: e.reg,
	})
	err := tui.Run(tui.Deps{
		Fetcher: e.gateway(),
		Loop:    loop,
		Logger:  e.log,
		Viewpoint: model.Viewpoint{
			Lat:      model.DefaultViewpoint.Lat,
			Lng:      model.DefaultViewpoint.Lng,
			Altitude: e.cfg.Render.Altitude,
		},
	})
	e.log.Info("tui exited", logging.Err(err))
	return err
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
