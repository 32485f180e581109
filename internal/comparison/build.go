package comparison

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/cypher"
	"github.com/mohammad-safakhou/graphjudge/internal/graph"
	"github.com/mohammad-safakhou/graphjudge/internal/judge"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
	"github.com/mohammad-safakhou/graphjudge/internal/rag"
	"github.com/mohammad-safakhou/graphjudge/internal/retrieval"
	"github.com/mohammad-safakhou/graphjudge/internal/subgraph"
	"github.com/mohammad-safakhou/graphjudge/internal/telemetry"
)

// measuredQuerier counts statements on their way to the graph store.
type measuredQuerier struct {
	inner graph.Querier
	tel   *telemetry.Telemetry
}

func (q *measuredQuerier) Execute(ctx context.Context, query string, params map[string]interface{}) ([]graph.Record, error) {
	q.tel.RecordGraphQuery()
	return q.inner.Execute(ctx, query, params)
}

// measuredProvider counts completion and embedding calls.
type measuredProvider struct {
	inner llm.Provider
	tel   *telemetry.Telemetry
}

func (p *measuredProvider) Complete(ctx context.Context, prompt, system string, opts llm.Options) (string, error) {
	p.tel.RecordLLMRequest("completion")
	return p.inner.Complete(ctx, prompt, system, opts)
}

func (p *measuredProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.tel.RecordLLMRequest("embedding")
	return p.inner.Embed(ctx, text)
}

// BuildEngine assembles a full orchestrator from configuration. When no
// schema description is configured it is sampled from the live graph.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}

	tel := telemetry.NewTelemetry(cfg.Telemetry)

	var querier graph.Querier = graph.NewClient(
		cfg.Graph.URI,
		cfg.Graph.Username,
		cfg.Graph.Password,
		cfg.Graph.Database,
		cfg.Graph.Timeout,
	)
	querier = &measuredQuerier{inner: querier, tel: tel}

	var provider llm.Provider = llm.NewOpenAIClient(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.CompletionModel,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Timeout,
	)
	provider = &measuredProvider{inner: provider, tel: tel}

	schema := cfg.Cypher.SchemaDescription
	if schema == "" {
		sampled, err := cypher.DescribeSchema(ctx, querier)
		if err != nil {
			return nil, fmt.Errorf("describing graph schema: %w", err)
		}
		schema = sampled
	}

	keyword := retrieval.NewKeywordStrategy(querier)
	vector := retrieval.NewVectorStrategy(querier, provider)
	generator := rag.NewGenerator(provider, cfg.Answer)
	ragPipeline := rag.NewPipeline(keyword, vector, generator, cfg.Retrieval.Limit, logger)

	extractor := subgraph.NewExtractor(querier, cfg.Extractor.MaxCandidates, cfg.Extractor.LookupCap, nil)
	translator := cypher.NewTranslator(provider, schema, cfg.Cypher)
	kgRunner := cypher.NewRunner(translator, querier, extractor, provider, cfg.Cypher, cfg.Answer, nil)

	j := judge.NewJudge(provider, cfg.Judge, nil)

	return NewOrchestrator(ragPipeline, kgRunner, j, extractor, querier, tel, schema, cfg.Batch.Delay, logger), nil
}
