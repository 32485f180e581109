package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mohammad-safakhou/graphjudge/internal/graph"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
)

// vectorQuery pulls every article that carries a precomputed embedding,
// with its neighborhood, in one round-trip. Ranking happens client-side.
const vectorQuery = `
MATCH (a:Article)
WHERE a.embedding IS NOT NULL
OPTIONAL MATCH (a)-[:IN_TOPIC]->(t:Topic)
OPTIONAL MATCH (r:Researcher)-[:PUBLISHED]->(a)
WITH a,
     collect(DISTINCT t.name) as topics,
     collect(DISTINCT r.name) as authors
RETURN a.title as title,
       a.abstract as abstract,
       topics,
       authors,
       a.embedding as embedding
`

// VectorStrategy ranks documents by cosine similarity between the
// question embedding and each document's stored embedding. An embedding
// failure is a hard error: silently falling back to keyword matching
// would mask provider outages.
type VectorStrategy struct {
	querier  graph.Querier
	provider llm.Provider
}

// NewVectorStrategy creates a vector retrieval strategy.
func NewVectorStrategy(querier graph.Querier, provider llm.Provider) *VectorStrategy {
	return &VectorStrategy{querier: querier, provider: provider}
}

// Retrieve embeds the question, ranks all embedded documents by cosine
// similarity descending and returns the top results.
func (s *VectorStrategy) Retrieve(ctx context.Context, question string, limit int) (*Context, error) {
	queryVec, err := s.provider.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("question embedding: %w", err)
	}

	records, err := s.querier.Execute(ctx, vectorQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("vector retrieval: %w", err)
	}

	type scored struct {
		rec        graph.Record
		similarity float64
	}
	candidates := make([]scored, 0, len(records))
	for _, rec := range records {
		vec, ok := rec.Get("embedding").Floats()
		if !ok {
			continue
		}
		candidates = append(candidates, scored{rec: rec, similarity: cosine(queryVec, vec)})
	}

	// Stable sort keeps the service's natural order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := &Context{}
	for _, c := range candidates {
		out.Documents = append(out.Documents, documentFromRecord(c.rec, true, c.similarity))
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
