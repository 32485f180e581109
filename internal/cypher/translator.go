package cypher

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
)

const translatorSystem = "You are a Neo4j Cypher query expert. Generate only valid, executable Cypher queries. Be precise with syntax."

// Translation is the outcome of one question-to-Cypher attempt. Failure
// here means the model call itself failed; whether the query is valid
// is unknown until execution.
type Translation struct {
	Success bool
	Query   string
	Err     error
}

// Translator converts natural language questions into Cypher using the
// completion model, primed with the graph schema.
type Translator struct {
	provider    llm.Provider
	schema      string
	temperature float64
	maxTokens   int
}

// NewTranslator creates a translator bound to a schema description.
func NewTranslator(provider llm.Provider, schema string, cfg config.CypherConfig) *Translator {
	return &Translator{
		provider:    provider,
		schema:      schema,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Translate generates a Cypher query for the question. Code fences the
// model wraps around the query are stripped.
func (t *Translator) Translate(ctx context.Context, question string) Translation {
	prompt := fmt.Sprintf(`%s

Task: Convert the following natural language question into a valid Neo4j Cypher query.

Rules:
1. Return ONLY the Cypher query, no explanations
2. Use proper Neo4j syntax
3. Use MATCH for finding patterns
4. Use WHERE for filtering
5. Use RETURN to specify what to return
6. Use toLower() for case-insensitive text matching
7. Limit results to 20 unless asked otherwise
8. For "collaborators", find researchers who published the SAME article
9. For counting, use count() function
10. For finding by name, use WHERE node.name = "exact name" or CONTAINS for partial match

Common Query Patterns:
- Find collaborators: MATCH (r1:Researcher)-[:PUBLISHED]->(a:Article)<-[:PUBLISHED]-(r2:Researcher)
- Count articles: MATCH (r:Researcher)-[:PUBLISHED]->(a) RETURN r.name, count(a)
- Find by topic: MATCH (a:Article)-[:IN_TOPIC]->(t:Topic) WHERE toLower(t.name) CONTAINS 'keyword'
- Find researcher's work: MATCH (r:Researcher {name: "Name"})-[:PUBLISHED]->(a) RETURN a.title

Question: "%s"

Cypher Query:`, t.schema, question)

	raw, err := t.provider.Complete(ctx, prompt, translatorSystem, llm.Options{
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return Translation{Success: false, Err: err}
	}

	query := strings.TrimSpace(llm.StripFences(raw))
	return Translation{Success: true, Query: query}
}
