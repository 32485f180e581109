package comparison

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/graphjudge/internal/cypher"
	"github.com/mohammad-safakhou/graphjudge/internal/graph"
	"github.com/mohammad-safakhou/graphjudge/internal/judge"
	"github.com/mohammad-safakhou/graphjudge/internal/rag"
	"github.com/mohammad-safakhou/graphjudge/internal/subgraph"
	"github.com/mohammad-safakhou/graphjudge/internal/telemetry"
)

// Record is one judged comparison. Records are created once and never
// mutated afterward.
type Record struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	RAG       rag.Response  `json:"rag_result"`
	KG        cypher.Result `json:"kg_result"`
	Verdict   judge.Verdict `json:"verdict"`
	Winner    string        `json:"winner"`
	CreatedAt time.Time     `json:"created_at"`
}

// Orchestrator runs both branches for a question and judges them.
type Orchestrator struct {
	rag       *rag.Pipeline
	kg        *cypher.Runner
	judge     *judge.Judge
	extractor *subgraph.Extractor
	querier   graph.Querier
	telemetry *telemetry.Telemetry
	schema    string
	delay     time.Duration
	logger    *log.Logger
}

// NewOrchestrator wires the two branches and the judge together.
func NewOrchestrator(ragPipeline *rag.Pipeline, kgRunner *cypher.Runner, j *judge.Judge, extractor *subgraph.Extractor, querier graph.Querier, tel *telemetry.Telemetry, schema string, delay time.Duration, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		rag:       ragPipeline,
		kg:        kgRunner,
		judge:     j,
		extractor: extractor,
		querier:   querier,
		telemetry: tel,
		schema:    schema,
		delay:     delay,
		logger:    logger,
	}
}

// Compare runs both branches for one question and judges the pair. A
// failing completion provider in the RAG branch is an error here; a
// failing KG branch is not, it just hands the judge a failed result.
func (o *Orchestrator) Compare(ctx context.Context, question string, useVector bool) (Record, error) {
	start := time.Now()
	o.logger.Printf("comparing question: %s", question)

	ragResp, err := o.rag.RetrieveAndAnswer(ctx, question, useVector)
	if err != nil {
		o.telemetry.RecordBranch(telemetry.BranchEvent{Branch: "rag", Success: false, Duration: time.Since(start)})
		return Record{}, fmt.Errorf("RAG branch: %w", err)
	}
	o.telemetry.RecordBranch(telemetry.BranchEvent{Branch: "rag", Success: true, Duration: ragResp.Elapsed})

	kgResult := o.kg.TranslateAndExecute(ctx, question)
	o.telemetry.RecordBranch(telemetry.BranchEvent{Branch: "kg", Success: kgResult.Success, Duration: kgResult.Elapsed})
	if !kgResult.Success {
		o.logger.Printf("KG branch failed: %s", kgResult.Err)
	}

	verdict := o.judge.Evaluate(ctx, question, ragResp, kgResult)
	winner := verdict.Winner()

	record := Record{
		ID:        uuid.NewString(),
		Question:  question,
		RAG:       ragResp,
		KG:        kgResult,
		Verdict:   verdict,
		Winner:    winner,
		CreatedAt: time.Now().UTC(),
	}

	o.telemetry.RecordComparison(telemetry.ComparisonEvent{
		ID:       record.ID,
		Question: question,
		Winner:   winner,
		Duration: time.Since(start),
	})
	o.logger.Printf("winner: %s (%v)", winner, time.Since(start))

	return record, nil
}

// CompareBatch judges a list of questions sequentially, pausing between
// questions to avoid hammering the completion provider. On error the
// records produced so far are returned alongside it.
func (o *Orchestrator) CompareBatch(ctx context.Context, questions []string, useVector bool) ([]Record, error) {
	records := make([]Record, 0, len(questions))
	for i, question := range questions {
		o.logger.Printf("question %d/%d", i+1, len(questions))

		record, err := o.Compare(ctx, question, useVector)
		if err != nil {
			return records, err
		}
		records = append(records, record)

		if i < len(questions)-1 && o.delay > 0 {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(o.delay):
			}
		}
	}
	return records, nil
}

// RetrieveAndAnswer exposes the RAG branch on its own.
func (o *Orchestrator) RetrieveAndAnswer(ctx context.Context, question string, useVector bool) (rag.Response, error) {
	return o.rag.RetrieveAndAnswer(ctx, question, useVector)
}

// TranslateAndExecute exposes the KG branch on its own.
func (o *Orchestrator) TranslateAndExecute(ctx context.Context, question string) cypher.Result {
	return o.kg.TranslateAndExecute(ctx, question)
}

// Overview exposes a bounded whole-graph snapshot.
func (o *Orchestrator) Overview(ctx context.Context, limit int) (subgraph.Snapshot, error) {
	return o.extractor.Overview(ctx, limit)
}

// Schema returns the schema description the translator was primed with.
func (o *Orchestrator) Schema() string { return o.schema }

// Telemetry returns the orchestrator's telemetry instance.
func (o *Orchestrator) Telemetry() *telemetry.Telemetry { return o.telemetry }

// CorpusSize counts the nodes currently in the graph.
func (o *Orchestrator) CorpusSize(ctx context.Context) (int64, error) {
	records, err := o.querier.Execute(ctx, "MATCH (n) RETURN count(n) as count", nil)
	if err != nil {
		return 0, fmt.Errorf("corpus size: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	count, _ := records[0].Get("count").AsNumber()
	return int64(count), nil
}
