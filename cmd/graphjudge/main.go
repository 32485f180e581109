package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "graphjudge", Short: "RAG vs Knowledge Graph comparison engine"}

	root.AddCommand(serveCMD(), compareCMD(), batchCMD(), schemaCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
