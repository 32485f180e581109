package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/cypher"
	"github.com/mohammad-safakhou/graphjudge/internal/llm"
	"github.com/mohammad-safakhou/graphjudge/internal/rag"
)

const judgeSystem = "You are an expert AI judge evaluating different question-answering systems. Be objective, thorough, and fair in your evaluations."

// Judgment is the structured verdict the judge model returns.
type Judgment struct {
	Winner         string   `json:"winner"`
	Confidence     string   `json:"confidence"`
	AccuracyA      int      `json:"accuracy_score_a"`
	AccuracyB      int      `json:"accuracy_score_b"`
	CompletenessA  int      `json:"completeness_score_a"`
	CompletenessB  int      `json:"completeness_score_b"`
	PrecisionA     int      `json:"precision_score_a"`
	PrecisionB     int      `json:"precision_score_b"`
	Reasoning      string   `json:"reasoning"`
	StrengthsA     []string `json:"strengths_a"`
	StrengthsB     []string `json:"strengths_b"`
	WeaknessesA    []string `json:"weaknesses_a"`
	WeaknessesB    []string `json:"weaknesses_b"`
	Recommendation string   `json:"recommendation"`
}

// VerdictKind discriminates the three terminal verdict states.
type VerdictKind string

const (
	// VerdictStructured means Judgment holds a parsed verdict.
	VerdictStructured VerdictKind = "structured"
	// VerdictRawText means the model answered but the reply was not
	// valid JSON; RawText holds it verbatim.
	VerdictRawText VerdictKind = "raw_text"
	// VerdictError means the judge call itself failed; Err holds the
	// message. Neither state is retried.
	VerdictError VerdictKind = "error"
)

// Verdict is the judge's output for one comparison.
type Verdict struct {
	Kind     VerdictKind `json:"kind"`
	Judgment Judgment    `json:"judgment,omitempty"`
	RawText  string      `json:"raw_text,omitempty"`
	Err      string      `json:"error,omitempty"`
}

// WinnerLabel maps the judge's winner token to a method name. The
// mapping is total: anything outside {A, B, TIE} is UNKNOWN.
func WinnerLabel(winner string) string {
	switch winner {
	case "A":
		return "RAG"
	case "B":
		return "Knowledge Graph"
	case "TIE":
		return "TIE"
	default:
		return "UNKNOWN"
	}
}

// Winner resolves the verdict to a method name. Non-structured
// verdicts resolve to UNKNOWN.
func (v Verdict) Winner() string {
	if v.Kind != VerdictStructured {
		return "UNKNOWN"
	}
	return WinnerLabel(v.Judgment.Winner)
}

// Judge scores a RAG answer against a KG answer for the same question.
type Judge struct {
	provider    llm.Provider
	temperature float64
	seed        int
	maxTokens   int
	logger      *log.Logger
}

// NewJudge creates a judge. Temperature 0 plus a fixed seed keeps
// verdicts as reproducible as the model allows.
func NewJudge(provider llm.Provider, cfg config.JudgeConfig, logger *log.Logger) *Judge {
	if logger == nil {
		logger = log.New(log.Writer(), "[JUDGE] ", log.LstdFlags)
	}
	return &Judge{
		provider:    provider,
		temperature: cfg.Temperature,
		seed:        cfg.Seed,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Evaluate produces a verdict for one question. When the KG branch
// failed the verdict is decided without any model call: RAG wins.
func (j *Judge) Evaluate(ctx context.Context, question string, ragResult rag.Response, kgResult cypher.Result) Verdict {
	if !kgResult.Success {
		return Verdict{
			Kind: VerdictStructured,
			Judgment: Judgment{
				Winner:     "A",
				Confidence: "high",
				Reasoning:  "Knowledge Graph query failed",
			},
		}
	}

	prompt := j.buildPrompt(question, ragResult, kgResult)

	reply, err := j.provider.Complete(ctx, prompt, judgeSystem, llm.Options{
		Temperature: j.temperature,
		MaxTokens:   j.maxTokens,
		Seed:        j.seed,
		HasSeed:     true,
	})
	if err != nil {
		j.logger.Printf("judge call failed: %v", err)
		return Verdict{Kind: VerdictError, Err: err.Error()}
	}

	text := strings.TrimSpace(llm.StripFences(reply))
	var judgment Judgment
	if err := json.Unmarshal([]byte(text), &judgment); err != nil {
		return Verdict{Kind: VerdictRawText, RawText: strings.TrimSpace(reply)}
	}
	return Verdict{Kind: VerdictStructured, Judgment: judgment}
}

func (j *Judge) buildPrompt(question string, ragResult rag.Response, kgResult cypher.Result) string {
	preview := kgResult.Formatted
	if len(preview) > 500 {
		preview = preview[:500]
	}

	return fmt.Sprintf(`You are an expert judge evaluating two AI systems answering the same question.

Question: "%s"

SYSTEM A (RAG - Retrieval-Augmented Generation):
Answer: %s
Method: Retrieved %d relevant documents and generated answer using LLM
Time: %.2fs

SYSTEM B (Knowledge Graph with Text-to-Cypher):
Cypher Query: %s
Answer: %s
Method: Generated structured database query and retrieved %d exact results
Time: %.2fs
Raw Results: %s...

Evaluation Criteria:
1. **Accuracy**: Which answer is more factually correct?
2. **Completeness**: Which answer provides more complete information?
3. **Precision**: Which answer is more specific and exact?
4. **Verifiability**: Which answer can be verified/proven?
5. **Usefulness**: Which answer better serves the user's intent?

Provide your evaluation in the following JSON format:
{
    "winner": "A" or "B" or "TIE",
    "confidence": "high" or "medium" or "low",
    "accuracy_score_a": 1-10,
    "accuracy_score_b": 1-10,
    "completeness_score_a": 1-10,
    "completeness_score_b": 1-10,
    "precision_score_a": 1-10,
    "precision_score_b": 1-10,
    "reasoning": "Detailed explanation of your judgment",
    "strengths_a": ["strength 1", "strength 2"],
    "strengths_b": ["strength 1", "strength 2"],
    "weaknesses_a": ["weakness 1", "weakness 2"],
    "weaknesses_b": ["weakness 1", "weakness 2"],
    "recommendation": "When to use each method for this type of question"
}

Be objective and thorough in your analysis.`,
		question,
		ragResult.Answer,
		len(ragResult.Sources),
		ragResult.Elapsed.Seconds(),
		kgResult.Query,
		kgResult.Answer,
		kgResult.ResultCount,
		kgResult.Elapsed.Seconds(),
		preview,
	)
}
