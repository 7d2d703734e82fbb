package main

import (
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/internal/server"
	"github.com/benjaminschreck/go-slides/pkg/slides"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve render requests over HTTP",
		Long: `Starts an HTTP service rendering the configured template.

  POST /v1/render  {"job_id": "...", "records": [{"jeschro_content": "..."}]}
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			engine, err := slides.New(slides.WithConfig(&cfg.Render), slides.WithLogger(a.logger))
			if err != nil {
				return err
			}
			// fail fast on a bad template instead of on the first request
			if _, err := engine.PrepareFile(cfg.Template); err != nil {
				return err
			}

			srv := server.New(engine, server.Config{
				Template:     cfg.Template,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}, a.logger)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
