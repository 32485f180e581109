package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
	"github.com/mohammad-safakhou/graphjudge/internal/retrieval"
)

// NoInformationAnswer is returned without a model call when retrieval
// finds nothing.
const NoInformationAnswer = "I couldn't find any relevant information in the knowledge graph."

// Response is the outcome of the RAG branch for one question.
type Response struct {
	Answer  string        `json:"answer"`
	Context string        `json:"context"`
	Sources []string      `json:"sources"`
	Elapsed time.Duration `json:"elapsed"`
}

// Generator turns a question plus retrieved context into an answer.
type Generator struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
}

// NewGenerator creates an answer generator.
func NewGenerator(provider llm.Provider, cfg config.AnswerConfig) *Generator {
	return &Generator{provider: provider, temperature: cfg.Temperature, maxTokens: cfg.MaxTokens}
}

// Generate asks the model to answer strictly from the supplied context.
// "Insufficient information" is an acceptable answer by instruction.
func (g *Generator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful assistant that answers questions based on the provided context from a knowledge graph.

Context from Knowledge Graph:
%s

Question: %s

Please provide a comprehensive answer based on the context above. If the context doesn't contain enough information to answer the question, say so.

Answer:`, contextBlock, question)

	answer, err := g.provider.Complete(ctx, prompt, "You are a helpful research assistant.", llm.Options{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	return answer, nil
}

// Pipeline wires a retrieval strategy pair and the generator into the
// retrieve-and-answer operation.
type Pipeline struct {
	keyword retrieval.Strategy
	vector  retrieval.Strategy
	gen     *Generator
	limit   int
	logger  *log.Logger
}

// NewPipeline creates a RAG pipeline.
func NewPipeline(keyword, vector retrieval.Strategy, gen *Generator, limit int, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	return &Pipeline{keyword: keyword, vector: vector, gen: gen, limit: limit, logger: logger}
}

// RetrieveAndAnswer runs retrieval with the selected strategy and
// generates an answer. With an empty context the generator is skipped
// entirely and the canned no-information answer is returned.
func (p *Pipeline) RetrieveAndAnswer(ctx context.Context, question string, useVector bool) (Response, error) {
	start := time.Now()

	strategy := p.keyword
	if useVector {
		strategy = p.vector
	}
	rctx, err := strategy.Retrieve(ctx, question, p.limit)
	if err != nil {
		return Response{}, err
	}

	if rctx.Empty() {
		p.logger.Printf("no retrieval matches for question: %s", question)
		return Response{
			Answer:  NoInformationAnswer,
			Context: "",
			Sources: []string{},
			Elapsed: time.Since(start),
		}, nil
	}

	block := rctx.Block()
	answer, err := p.gen.Generate(ctx, question, block)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Answer:  answer,
		Context: block,
		Sources: ExtractSources(block),
		Elapsed: time.Since(start),
	}, nil
}

// ExtractSources pulls the distinct document titles out of a rendered
// context block by line-prefix matching.
func ExtractSources(block string) []string {
	sources := []string{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(block, "\n") {
		if !strings.HasPrefix(line, "Article") || !strings.Contains(line, ":") {
			continue
		}
		title := strings.TrimSpace(line[strings.Index(line, ":")+1:])
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		sources = append(sources, title)
	}
	return sources
}
