package comparison

import "github.com/mohammad-safakhou/graphjudge/internal/judge"

// QuestionOutcome pairs a question with its winner for per-question
// reporting.
type QuestionOutcome struct {
	Question string `json:"question"`
	Winner   string `json:"winner"`
}

// Stats aggregates a batch of comparison records.
type Stats struct {
	Total    int `json:"total"`
	RAGWins  int `json:"rag_wins"`
	KGWins   int `json:"kg_wins"`
	Ties     int `json:"ties"`
	Unknowns int `json:"unknowns"`

	RAGWinPct float64 `json:"rag_win_pct"`
	KGWinPct  float64 `json:"kg_win_pct"`
	TiePct    float64 `json:"tie_pct"`

	// Mean accuracy over structured verdicts that carry scores. The
	// KG-failure default verdict carries none and is excluded.
	MeanAccuracyRAG float64 `json:"mean_accuracy_rag"`
	MeanAccuracyKG  float64 `json:"mean_accuracy_kg"`
	HasAccuracy     bool    `json:"has_accuracy"`

	PerQuestion []QuestionOutcome `json:"per_question"`
}

// Aggregate computes batch statistics over records.
func Aggregate(records []Record) Stats {
	stats := Stats{Total: len(records), PerQuestion: make([]QuestionOutcome, 0, len(records))}
	if len(records) == 0 {
		return stats
	}

	var sumRAG, sumKG int
	var scored int

	for _, record := range records {
		switch record.Winner {
		case "RAG":
			stats.RAGWins++
		case "Knowledge Graph":
			stats.KGWins++
		case "TIE":
			stats.Ties++
		default:
			stats.Unknowns++
		}

		if record.Verdict.Kind == judge.VerdictStructured {
			j := record.Verdict.Judgment
			if j.AccuracyA >= 1 && j.AccuracyB >= 1 {
				sumRAG += j.AccuracyA
				sumKG += j.AccuracyB
				scored++
			}
		}

		stats.PerQuestion = append(stats.PerQuestion, QuestionOutcome{
			Question: record.Question,
			Winner:   record.Winner,
		})
	}

	total := float64(stats.Total)
	stats.RAGWinPct = float64(stats.RAGWins) / total * 100
	stats.KGWinPct = float64(stats.KGWins) / total * 100
	stats.TiePct = float64(stats.Ties) / total * 100

	if scored > 0 {
		stats.MeanAccuracyRAG = float64(sumRAG) / float64(scored)
		stats.MeanAccuracyKG = float64(sumKG) / float64(scored)
		stats.HasAccuracy = true
	}

	return stats
}
