package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
	"github.com/mohammad-safakhou/graphjudge/internal/server"
	"github.com/mohammad-safakhou/graphjudge/internal/session"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			engine, err := comparison.BuildEngine(ctx, cfg, nil)
			if err != nil {
				return err
			}
			store, err := session.NewStore(ctx, cfg.Session)
			if err != nil {
				return err
			}

			return server.New(engine, store, engine.Telemetry(), cfg).Run()
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
