package cypher

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/graph"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
	"github.com/mohammad-safakhou/graphjudge/internal/subgraph"
)

// MethodName identifies the KG branch in comparison records.
const MethodName = "Knowledge Graph (Text-to-Cypher)"

const explainerSystem = "You are a helpful assistant that explains database query results clearly and accurately."

// Result is the outcome of the KG branch for one question.
type Result struct {
	Method      string            `json:"method"`
	Success     bool              `json:"success"`
	Query       string            `json:"cypher,omitempty"`
	Rows        []graph.Record    `json:"results,omitempty"`
	ResultCount int               `json:"result_count"`
	Formatted   string            `json:"formatted_results,omitempty"`
	Answer      string            `json:"answer"`
	Snapshot    subgraph.Snapshot `json:"graph_data"`
	Elapsed     time.Duration     `json:"elapsed"`
	Err         string            `json:"error,omitempty"`
}

// Runner drives the full KG branch: translate, execute, extract the
// neighborhood, and explain the rows in natural language.
type Runner struct {
	translator  *Translator
	querier     graph.Querier
	extractor   *subgraph.Extractor
	provider    llm.Provider
	rowCap      int
	temperature float64
	maxTokens   int
	logger      *log.Logger
}

// NewRunner creates a runner. The explanation call reuses the answer
// generation sampling parameters.
func NewRunner(translator *Translator, querier graph.Querier, extractor *subgraph.Extractor, provider llm.Provider, cypherCfg config.CypherConfig, answerCfg config.AnswerConfig, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(log.Writer(), "[CYPHER] ", log.LstdFlags)
	}
	return &Runner{
		translator:  translator,
		querier:     querier,
		extractor:   extractor,
		provider:    provider,
		rowCap:      cypherCfg.RowCap,
		temperature: answerCfg.Temperature,
		maxTokens:   answerCfg.MaxTokens,
		logger:      logger,
	}
}

// TranslateAndExecute runs the whole branch. Translation failure and
// execution failure both yield Success=false but keep their distinct
// error messages; an explanation failure degrades to a count-only
// answer instead of failing the branch.
func (r *Runner) TranslateAndExecute(ctx context.Context, question string) Result {
	start := time.Now()

	translation := r.translator.Translate(ctx, question)
	if !translation.Success {
		errMsg := fmt.Sprintf("failed to generate Cypher: %v", translation.Err)
		return Result{
			Method:   MethodName,
			Success:  false,
			Err:      errMsg,
			Answer:   fmt.Sprintf("Failed to query knowledge graph: %s", errMsg),
			Snapshot: subgraph.Snapshot{Nodes: map[string]subgraph.Node{}, Relationships: []subgraph.Relationship{}},
			Elapsed:  time.Since(start),
		}
	}

	rows, err := r.querier.Execute(ctx, translation.Query, nil)
	if err != nil {
		errMsg := fmt.Sprintf("Cypher execution error: %v", err)
		return Result{
			Method:   MethodName,
			Success:  false,
			Query:    translation.Query,
			Rows:     []graph.Record{},
			Err:      errMsg,
			Answer:   fmt.Sprintf("Failed to query knowledge graph: %s", errMsg),
			Snapshot: subgraph.Snapshot{Nodes: map[string]subgraph.Node{}, Relationships: []subgraph.Relationship{}},
			Elapsed:  time.Since(start),
		}
	}

	snapshot := r.extractor.Extract(ctx, rows)
	formatted := r.FormatResults(rows)
	answer := r.explain(ctx, question, translation.Query, formatted, len(rows))

	return Result{
		Method:      MethodName,
		Success:     true,
		Query:       translation.Query,
		Rows:        rows,
		ResultCount: len(rows),
		Formatted:   formatted,
		Answer:      answer,
		Snapshot:    snapshot,
		Elapsed:     time.Since(start),
	}
}

func (r *Runner) explain(ctx context.Context, question, query, formatted string, count int) string {
	prompt := fmt.Sprintf(`You are explaining database query results to a user.

Question: %s

Cypher Query Used:
%s

Query Results:
%s

Provide a clear, natural language answer based on these EXACT results. Be specific with numbers and names from the data. If there are no results, say so clearly.

Answer:`, question, query, formatted)

	answer, err := r.provider.Complete(ctx, prompt, explainerSystem, llm.Options{
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		r.logger.Printf("explanation generation failed: %v", err)
		return fmt.Sprintf("Found %d results, but failed to generate explanation: %v", count, err)
	}
	return answer
}

// FormatResults renders query rows into the readable block fed to the
// explanation prompt and the judge. Only the first rowCap rows are
// shown; list values are truncated to five elements.
func (r *Runner) FormatResults(rows []graph.Record) string {
	if len(rows) == 0 {
		return "No results found."
	}

	capped := rows
	if len(capped) > r.rowCap {
		capped = capped[:r.rowCap]
	}

	blocks := make([]string, 0, len(capped))
	for i, row := range capped {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		fmt.Fprintf(&b, "Result %d:", i+1)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  • %s: %s", k, row[k].Display())
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
