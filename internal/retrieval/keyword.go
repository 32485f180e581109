package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/graphjudge/internal/graph"
)

// keywordQuery matches any whitespace token of the lower-cased question as
// a substring of title or abstract, then orders by distinct author count.
// Ties keep the graph service's natural order.
const keywordQuery = `
MATCH (a:Article)
WHERE ANY(keyword IN $keywords WHERE
    toLower(a.title) CONTAINS keyword OR
    toLower(a.abstract) CONTAINS keyword)
OPTIONAL MATCH (a)-[:IN_TOPIC]->(t:Topic)
OPTIONAL MATCH (r:Researcher)-[:PUBLISHED]->(a)
WITH a,
     collect(DISTINCT t.name) as topics,
     collect(DISTINCT r.name) as authors
RETURN a.title as title,
       a.abstract as abstract,
       a.publication_date as date,
       topics,
       authors
ORDER BY size(authors) DESC
LIMIT $limit
`

// KeywordStrategy retrieves documents by case-insensitive substring match
// in a single round-trip to the graph service.
type KeywordStrategy struct {
	querier graph.Querier
}

// NewKeywordStrategy creates a keyword retrieval strategy.
func NewKeywordStrategy(querier graph.Querier) *KeywordStrategy {
	return &KeywordStrategy{querier: querier}
}

// Retrieve runs the keyword match and maps rows into a Context.
func (s *KeywordStrategy) Retrieve(ctx context.Context, question string, limit int) (*Context, error) {
	keywords := strings.Fields(strings.ToLower(question))
	if len(keywords) == 0 {
		return &Context{}, nil
	}

	records, err := s.querier.Execute(ctx, keywordQuery, map[string]interface{}{
		"keywords": keywords,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword retrieval: %w", err)
	}

	out := &Context{}
	for _, rec := range records {
		out.Documents = append(out.Documents, documentFromRecord(rec, false, 0))
	}
	return out, nil
}

func documentFromRecord(rec graph.Record, withSimilarity bool, similarity float64) Document {
	title, _ := rec.Get("title").AsString()
	abstract, _ := rec.Get("abstract").AsString()
	doc := Document{
		Title:         title,
		Abstract:      abstract,
		Date:          rec.Get("date").Display(),
		Authors:       rec.Get("authors").StringList(),
		Topics:        rec.Get("topics").StringList(),
		Similarity:    similarity,
		HasSimilarity: withSimilarity,
	}
	return doc
}
