package retrieval

import (
	"context"
	"fmt"
	"strings"
)

// Document is one corpus article with its graph neighborhood flattened in.
type Document struct {
	Title    string
	Authors  []string
	Topics   []string
	Abstract string
	Date     string

	// Similarity is only meaningful for vector retrieval.
	Similarity    float64
	HasSimilarity bool
}

// Context is the ordered set of documents a retrieval strategy selected,
// ready to be rendered into a prompt block. Order matters: keyword mode
// sorts by distinct author count, vector mode by similarity.
type Context struct {
	Documents []Document
}

// Strategy selects supporting documents for a question. Strategies return
// an empty context, never an error, when nothing matches; only transport
// failures surface as errors.
type Strategy interface {
	Retrieve(ctx context.Context, question string, limit int) (*Context, error)
}

// Empty reports whether the context holds no documents.
func (c *Context) Empty() bool {
	return c == nil || len(c.Documents) == 0
}

// Block renders the context into the delimited text block embedded in
// prompts. Vector-mode documents surface their similarity to 3 decimals.
func (c *Context) Block() string {
	if c.Empty() {
		return ""
	}
	parts := make([]string, 0, len(c.Documents))
	for i, d := range c.Documents {
		if d.HasSimilarity {
			parts = append(parts, fmt.Sprintf("Article %d (Similarity: %.3f):\nTitle: %s\nAuthors: %s\nTopics: %s\nAbstract: %s\n---",
				i+1, d.Similarity, d.Title, joinOrNA(d.Authors), joinOrNA(d.Topics), d.Abstract))
			continue
		}
		parts = append(parts, fmt.Sprintf("Article %d: %s\nAuthors: %s\nTopics: %s\nAbstract: %s\nDate: %s\n---",
			i+1, d.Title, joinOrNA(d.Authors), joinOrNA(d.Topics), d.Abstract, d.Date))
	}
	return strings.Join(parts, "\n\n")
}

func joinOrNA(names []string) string {
	if len(names) == 0 {
		return "N/A"
	}
	return strings.Join(names, ", ")
}
