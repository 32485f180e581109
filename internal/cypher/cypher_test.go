package cypher

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/graph"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
	"github.com/mohammad-safakhou/graphjudge/internal/subgraph"
)

type scriptedProvider struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt, system string, opts llm.Options) (string, error) {
	p.prompts = append(p.prompts, prompt)
	defer func() { p.calls++ }()
	if p.err != nil {
		return "", p.err
	}
	if p.calls < len(p.replies) {
		return p.replies[p.calls], nil
	}
	return "", errors.New("no scripted reply")
}

func (p *scriptedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not used")
}

type scriptedQuerier struct {
	results map[string][]graph.Record
	err     error
	queries []string
}

func (q *scriptedQuerier) Execute(ctx context.Context, query string, params map[string]interface{}) ([]graph.Record, error) {
	q.queries = append(q.queries, query)
	if q.err != nil {
		return nil, q.err
	}
	for needle, records := range q.results {
		if strings.Contains(query, needle) {
			return records, nil
		}
	}
	return nil, nil
}

func cypherCfg() config.CypherConfig {
	return config.CypherConfig{Temperature: 0.1, MaxTokens: 300, RowCap: 20}
}

func testRunner(provider llm.Provider, querier graph.Querier) *Runner {
	logger := log.New(io.Discard, "", 0)
	extractor := subgraph.NewExtractor(querier, 50, 20, logger)
	translator := NewTranslator(provider, "schema text", cypherCfg())
	return NewRunner(translator, querier, extractor, provider, cypherCfg(), config.AnswerConfig{Temperature: 0.7, MaxTokens: 500}, logger)
}

func TestTranslateStripsFences(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"```cypher\nMATCH (n) RETURN n\n```"}}
	tr := NewTranslator(provider, "schema text", cypherCfg())

	translation := tr.Translate(context.Background(), "show everything")
	if !translation.Success {
		t.Fatalf("expected success, got %v", translation.Err)
	}
	if translation.Query != "MATCH (n) RETURN n" {
		t.Fatalf("fences not stripped: %q", translation.Query)
	}
	if !strings.Contains(provider.prompts[0], "schema text") {
		t.Fatalf("schema missing from prompt")
	}
	if !strings.Contains(provider.prompts[0], `Question: "show everything"`) {
		t.Fatalf("question missing from prompt")
	}
}

func TestTranslateAndExecuteTranslationFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model offline")}
	querier := &scriptedQuerier{}
	r := testRunner(provider, querier)

	result := r.TranslateAndExecute(context.Background(), "q")
	if result.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(result.Err, "failed to generate Cypher") {
		t.Fatalf("translation failure must be labeled as such, got %q", result.Err)
	}
	if len(querier.queries) != 0 {
		t.Fatalf("no query may run after translation failure")
	}
	if result.Method != MethodName {
		t.Fatalf("method label missing: %q", result.Method)
	}
}

func TestTranslateAndExecuteExecutionFailure(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"MATCH (x RETURN x"}}
	querier := &scriptedQuerier{err: errors.New("SyntaxError")}
	r := testRunner(provider, querier)

	result := r.TranslateAndExecute(context.Background(), "q")
	if result.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(result.Err, "Cypher execution error") {
		t.Fatalf("execution failure must be labeled as such, got %q", result.Err)
	}
	if result.Query != "MATCH (x RETURN x" {
		t.Fatalf("failed result must keep the generated query, got %q", result.Query)
	}
}

func TestTranslateAndExecuteCountAggregate(t *testing.T) {
	countQuery := "MATCH (r:Researcher)-[:PUBLISHED]->(a) RETURN r.name as researcher, count(a) as articles"
	provider := &scriptedProvider{replies: []string{
		countQuery,
		"R1 has published 3 articles and R2 has published 1.",
	}}
	querier := &scriptedQuerier{results: map[string][]graph.Record{
		"count(a)": {
			{"researcher": graph.String("R1"), "articles": graph.Number(3)},
			{"researcher": graph.String("R2"), "articles": graph.Number(1)},
		},
	}}
	r := testRunner(provider, querier)

	result := r.TranslateAndExecute(context.Background(), "How many articles has each researcher published?")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Err)
	}
	if !strings.Contains(result.Query, "count(") {
		t.Fatalf("expected a count aggregate, got %q", result.Query)
	}
	if result.ResultCount != 2 {
		t.Fatalf("expected one record per researcher, got %d", result.ResultCount)
	}
	if !strings.Contains(result.Formatted, "articles: 3") {
		t.Fatalf("formatted results missing counts:\n%s", result.Formatted)
	}
	if result.Answer != "R1 has published 3 articles and R2 has published 1." {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
}

func TestTranslateAndExecuteExplanationFailureDegrades(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"MATCH (n) RETURN n.name as name"}}
	querier := &scriptedQuerier{results: map[string][]graph.Record{
		"RETURN n.name": {{"name": graph.String("R1")}},
	}}
	r := testRunner(provider, querier)

	result := r.TranslateAndExecute(context.Background(), "q")
	if !result.Success {
		t.Fatalf("explanation failure must not fail the branch: %q", result.Err)
	}
	if !strings.Contains(result.Answer, "Found 1 results, but failed to generate explanation") {
		t.Fatalf("expected degraded answer, got %q", result.Answer)
	}
}

func TestFormatResults(t *testing.T) {
	r := testRunner(&scriptedProvider{}, &scriptedQuerier{})

	if got := r.FormatResults(nil); got != "No results found." {
		t.Fatalf("empty rows rendered as %q", got)
	}

	rows := []graph.Record{
		{
			"name":   graph.String("Emily Chen"),
			"topics": graph.List(graph.String("a"), graph.String("b"), graph.String("c"), graph.String("d"), graph.String("e"), graph.String("f")),
		},
	}
	got := r.FormatResults(rows)
	if !strings.HasPrefix(got, "Result 1:") {
		t.Fatalf("row header missing:\n%s", got)
	}
	if !strings.Contains(got, "• name: Emily Chen") {
		t.Fatalf("scalar field missing:\n%s", got)
	}
	if !strings.Contains(got, "• topics: a, b, c, d, e") || strings.Contains(got, "f") {
		t.Fatalf("list must be capped at five elements:\n%s", got)
	}
}

func TestFormatResultsRowCap(t *testing.T) {
	r := testRunner(&scriptedProvider{}, &scriptedQuerier{})

	rows := make([]graph.Record, 25)
	for i := range rows {
		rows[i] = graph.Record{"n": graph.Number(float64(i))}
	}
	got := r.FormatResults(rows)
	if strings.Contains(got, "Result 21:") {
		t.Fatalf("rows beyond the cap must be dropped:\n%s", got)
	}
	if !strings.Contains(got, "Result 20:") {
		t.Fatalf("rows within the cap must be kept:\n%s", got)
	}
}
