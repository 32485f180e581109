package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/cypher"
	"github.com/mohammad-safakhou/graphjudge/internal/graph"
)

func schemaCMD() *cobra.Command {
	var cfgPath string
	var schema = &cobra.Command{
		Use:   "schema",
		Short: "Print the graph schema description and corpus size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			querier := graph.NewClient(
				cfg.Graph.URI,
				cfg.Graph.Username,
				cfg.Graph.Password,
				cfg.Graph.Database,
				cfg.Graph.Timeout,
			)

			description, err := cypher.DescribeSchema(ctx, querier)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), description)

			records, err := querier.Execute(ctx, "MATCH (n) RETURN count(n) as count", nil)
			if err != nil {
				return err
			}
			if len(records) > 0 {
				count, _ := records[0].Get("count").AsNumber()
				fmt.Fprintf(cmd.OutOrStdout(), "\nCorpus size: %d nodes\n", int64(count))
			}
			return nil
		},
	}
	schema.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return schema
}
