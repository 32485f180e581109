package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
	"github.com/mohammad-safakhou/graphjudge/internal/judge"
)

func compareCMD() *cobra.Command {
	var cfgPath string
	var useVector bool
	var compare = &cobra.Command{
		Use:   "compare [question]",
		Short: "Answer one question with both methods and judge them",
		Args:  cobra.MinimumNArgs(1),
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

			question := strings.Join(args, " ")
			record, err := engine.Compare(ctx, question, useVector)
			if err != nil {
				return err
			}

			printRecord(cmd, record)
			return nil
		},
	}
	compare.Flags().BoolVar(&useVector, "vector", false, "use vector similarity retrieval")
	compare.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return compare
}

func printRecord(cmd *cobra.Command, record comparison.Record) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\nQuestion: %s\n", record.Question)

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(out, "RAG ANSWER:")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	fmt.Fprintln(out, record.RAG.Answer)
	fmt.Fprintf(out, "Time: %.2fs\n", record.RAG.Elapsed.Seconds())
	fmt.Fprintf(out, "Sources: %d documents\n", len(record.RAG.Sources))

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(out, "KNOWLEDGE GRAPH ANSWER:")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	if record.KG.Success {
		fmt.Fprintf(out, "Cypher: %s\n", record.KG.Query)
		fmt.Fprintf(out, "\n%s\n", record.KG.Answer)
		fmt.Fprintf(out, "Time: %.2fs\n", record.KG.Elapsed.Seconds())
		fmt.Fprintf(out, "Results: %d exact matches\n", record.KG.ResultCount)
	} else {
		fmt.Fprintf(out, "Failed: %s\n", record.KG.Err)
	}

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(out, "VERDICT")
	fmt.Fprintln(out, strings.Repeat("=", 80))

	switch record.Verdict.Kind {
	case judge.VerdictError:
		fmt.Fprintf(out, "Error: %s\n", record.Verdict.Err)
	case judge.VerdictRawText:
		fmt.Fprintln(out, record.Verdict.RawText)
	case judge.VerdictStructured:
		j := record.Verdict.Judgment

		fmt.Fprintf(out, "\nWinner: %s\n", record.Winner)
		fmt.Fprintf(out, "Confidence: %s\n", strings.ToUpper(j.Confidence))

		if j.AccuracyA >= 1 || j.AccuracyB >= 1 {
			fmt.Fprintln(out, "\nScores:")
			fmt.Fprintln(out, "  RAG:")
			fmt.Fprintf(out, "    Accuracy: %d/10\n", j.AccuracyA)
			fmt.Fprintf(out, "    Completeness: %d/10\n", j.CompletenessA)
			fmt.Fprintf(out, "    Precision: %d/10\n", j.PrecisionA)
			fmt.Fprintln(out, "  Knowledge Graph:")
			fmt.Fprintf(out, "    Accuracy: %d/10\n", j.AccuracyB)
			fmt.Fprintf(out, "    Completeness: %d/10\n", j.CompletenessB)
			fmt.Fprintf(out, "    Precision: %d/10\n", j.PrecisionB)
		}

		if j.Reasoning != "" {
			fmt.Fprintf(out, "\nReasoning:\n  %s\n", j.Reasoning)
		}
		printList(out, "RAG Strengths", j.StrengthsA)
		printList(out, "Knowledge Graph Strengths", j.StrengthsB)
		printList(out, "RAG Weaknesses", j.WeaknessesA)
		printList(out, "Knowledge Graph Weaknesses", j.WeaknessesB)
		if j.Recommendation != "" {
			fmt.Fprintf(out, "\nRecommendation:\n  %s\n", j.Recommendation)
		}
	}
	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
