package comparison

import (
	"math"
	"testing"

	"github.com/mohammad-safakhou/graphjudge/internal/judge"
)

func structuredRecord(question, winner string, accuracyA, accuracyB int) Record {
	return Record{
		Question: question,
		Winner:   judge.WinnerLabel(winner),
		Verdict: judge.Verdict{
			Kind: judge.VerdictStructured,
			Judgment: judge.Judgment{
				Winner:    winner,
				AccuracyA: accuracyA,
				AccuracyB: accuracyB,
			},
		},
	}
}

func TestAggregateCounts(t *testing.T) {
	records := []Record{
		structuredRecord("q1", "A", 8, 6),
		structuredRecord("q2", "B", 5, 9),
		structuredRecord("q3", "TIE", 7, 7),
	}

	stats := Aggregate(records)
	if stats.Total != 3 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.RAGWins != 1 || stats.KGWins != 1 || stats.Ties != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if math.Abs(stats.RAGWinPct-33.3) > 0.1 || math.Abs(stats.KGWinPct-33.3) > 0.1 || math.Abs(stats.TiePct-33.3) > 0.1 {
		t.Fatalf("unexpected percentages: %+v", stats)
	}
	if !stats.HasAccuracy {
		t.Fatalf("scored records must produce accuracy means")
	}
	if math.Abs(stats.MeanAccuracyRAG-20.0/3) > 1e-9 || math.Abs(stats.MeanAccuracyKG-22.0/3) > 1e-9 {
		t.Fatalf("unexpected means: rag=%f kg=%f", stats.MeanAccuracyRAG, stats.MeanAccuracyKG)
	}
	if len(stats.PerQuestion) != 3 || stats.PerQuestion[1].Winner != "Knowledge Graph" {
		t.Fatalf("per-question outcomes wrong: %+v", stats.PerQuestion)
	}
}

func TestAggregateExcludesUnscoredVerdicts(t *testing.T) {
	records := []Record{
		structuredRecord("q1", "A", 8, 6),
		// KG-failure default verdict: structured but unscored.
		structuredRecord("q2", "A", 0, 0),
		{Question: "q3", Winner: "UNKNOWN", Verdict: judge.Verdict{Kind: judge.VerdictRawText, RawText: "prose"}},
		{Question: "q4", Winner: "UNKNOWN", Verdict: judge.Verdict{Kind: judge.VerdictError, Err: "boom"}},
	}

	stats := Aggregate(records)
	if stats.RAGWins != 2 || stats.Unknowns != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.HasAccuracy {
		t.Fatalf("one scored record is enough for means")
	}
	if stats.MeanAccuracyRAG != 8 || stats.MeanAccuracyKG != 6 {
		t.Fatalf("unscored verdicts must not dilute means: rag=%f kg=%f", stats.MeanAccuracyRAG, stats.MeanAccuracyKG)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	if stats.Total != 0 || stats.HasAccuracy {
		t.Fatalf("unexpected stats for empty input: %+v", stats)
	}
}
