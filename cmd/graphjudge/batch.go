package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
)

func batchCMD() *cobra.Command {
	var cfgPath string
	var useVector bool
	var file string
	var batch = &cobra.Command{
		Use:   "batch [questions...]",
		Short: "Judge multiple questions and show aggregate statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := args
			if file != "" {
				fromFile, err := readQuestions(file)
				if err != nil {
					return err
				}
				questions = append(questions, fromFile...)
			}
			if len(questions) == 0 {
				return fmt.Errorf("no questions given; pass them as arguments or via --file")
			}

			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			engine, err := comparison.BuildEngine(ctx, cfg, nil)
			if err != nil {
				return err
			}

			records, err := engine.CompareBatch(ctx, questions, useVector)
			for _, record := range records {
				printRecord(cmd, record)
			}
			if err != nil {
				return err
			}

			printStats(cmd, comparison.Aggregate(records))
			return nil
		},
	}
	batch.Flags().BoolVar(&useVector, "vector", false, "use vector similarity retrieval")
	batch.Flags().StringVarP(&file, "file", "f", "", "file with one question per line")
	batch.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return batch
}

func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening questions file: %w", err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading questions file: %w", err)
	}
	return questions, nil
}

func printStats(cmd *cobra.Command, stats comparison.Stats) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(out, "AGGREGATE STATISTICS")
	fmt.Fprintln(out, strings.Repeat("=", 80))

	fmt.Fprintln(out, "\nOverall Results:")
	fmt.Fprintf(out, "  RAG Wins: %d/%d (%.1f%%)\n", stats.RAGWins, stats.Total, stats.RAGWinPct)
	fmt.Fprintf(out, "  Knowledge Graph Wins: %d/%d (%.1f%%)\n", stats.KGWins, stats.Total, stats.KGWinPct)
	fmt.Fprintf(out, "  Ties: %d/%d (%.1f%%)\n", stats.Ties, stats.Total, stats.TiePct)

	if stats.HasAccuracy {
		fmt.Fprintln(out, "\nAverage Accuracy Scores:")
		fmt.Fprintf(out, "  RAG: %.1f/10\n", stats.MeanAccuracyRAG)
		fmt.Fprintf(out, "  Knowledge Graph: %.1f/10\n", stats.MeanAccuracyKG)
	}

	fmt.Fprintln(out, "\nQuestion Type Analysis:")
	for i, outcome := range stats.PerQuestion {
		question := outcome.Question
		if len(question) > 60 {
			question = question[:60] + "..."
		}
		fmt.Fprintf(out, "  %d. %s\n", i+1, question)
		fmt.Fprintf(out, "     Winner: %s\n", outcome.Winner)
	}

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
}
