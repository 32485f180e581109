package cypher

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/graphjudge/internal/graph"
)

const schemaSampleQuery = `
MATCH (r:Researcher)-[:PUBLISHED]->(a:Article)-[:IN_TOPIC]->(t:Topic)
RETURN r.name as researcher, a.title as article, t.name as topic
LIMIT 3
`

const schemaHeader = `
Graph Database Schema:
=====================

Node Types:
-----------
1. Researcher
   Properties: name (string)
   Example: "Emily Chen", "Dr. Sarah Williams"

2. Article
   Properties: title (string), abstract (string), publication_date (date)
   Example: "AI in Healthcare", "Machine Learning Applications"

3. Topic
   Properties: name (string)
   Example: "Artificial Intelligence", "Climate Change"

Relationships:
--------------
1. (Researcher)-[:PUBLISHED]->(Article)
   - A researcher published an article

2. (Article)-[:IN_TOPIC]->(Topic)
   - An article belongs to a topic

Important Notes:
----------------
- Multiple researchers can publish the SAME article (co-authorship)
- An article can have multiple topics
- Use MATCH patterns to find relationships
- Use WHERE clauses for filtering
- Use toLower() for case-insensitive matching
- Property access: node.property (e.g., r.name, a.title)

Sample Data:
------------
`

// DescribeSchema builds the schema text handed to the translator: the
// fixed structural description plus a few sampled rows so the model
// sees real values.
func DescribeSchema(ctx context.Context, querier graph.Querier) (string, error) {
	samples, err := querier.Execute(ctx, schemaSampleQuery, nil)
	if err != nil {
		return "", fmt.Errorf("schema sample query: %w", err)
	}

	schema := schemaHeader
	for _, sample := range samples {
		researcher := sample.Get("researcher").Display()
		article := sample.Get("article").Display()
		topic := sample.Get("topic").Display()
		if len(article) > 50 {
			article = article[:50]
		}
		schema += fmt.Sprintf("\n• %s -> %s... -> %s", researcher, article, topic)
	}
	return schema, nil
}
