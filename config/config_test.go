package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// writeConfig drops a yaml file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphjudge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func load(t *testing.T, content string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return LoadConfig(writeConfig(t, content))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := load(t, "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Retrieval.Limit != 5 {
		t.Errorf("retrieval.limit = %d, want 5", cfg.Retrieval.Limit)
	}
	if cfg.Answer.Temperature != 0.7 || cfg.Answer.MaxTokens != 500 {
		t.Errorf("answer defaults = %v/%v", cfg.Answer.Temperature, cfg.Answer.MaxTokens)
	}
	if cfg.Cypher.Temperature != 0.1 || cfg.Cypher.MaxTokens != 300 || cfg.Cypher.RowCap != 20 {
		t.Errorf("cypher defaults = %+v", cfg.Cypher)
	}
	if cfg.Judge.Temperature != 0 || cfg.Judge.Seed != 42 || cfg.Judge.MaxTokens != 1000 {
		t.Errorf("judge defaults = %+v", cfg.Judge)
	}
	if cfg.Extractor.MaxCandidates != 50 || cfg.Extractor.LookupCap != 20 {
		t.Errorf("extractor defaults = %+v", cfg.Extractor)
	}
	if cfg.Batch.Delay != time.Second {
		t.Errorf("batch.delay = %v, want 1s", cfg.Batch.Delay)
	}
	if cfg.Session.Backend != "inmemory" || cfg.Session.TTL != 30*time.Minute {
		t.Errorf("session defaults = %+v", cfg.Session)
	}
	if cfg.Server.Addr != ":10001" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.LLM.CompletionModel != "gpt-4o-mini" || cfg.LLM.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("llm model defaults = %+v", cfg.LLM)
	}
	if cfg.Graph.Database != "neo4j" || cfg.Graph.Timeout != 30*time.Second {
		t.Errorf("graph defaults = %+v", cfg.Graph)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := load(t, strings.TrimSpace(`
retrieval:
  limit: 10
  use_vector: true
session:
  backend: redis
  redis:
    host: cache.internal
    port: 6380
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Retrieval.Limit != 10 || !cfg.Retrieval.UseVector {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Session.Backend != "redis" {
		t.Errorf("session.backend = %q", cfg.Session.Backend)
	}
	if cfg.Session.Redis.Host != "cache.internal" || cfg.Session.Redis.Port != 6380 {
		t.Errorf("redis = %+v", cfg.Session.Redis)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "http://graph.internal:7474")
	t.Setenv("NEO4J_USERNAME", "ops")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := load(t, "graph:\n  uri: http://localhost:7474\n")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Graph.URI != "http://graph.internal:7474" {
		t.Errorf("graph.uri = %q, env must win over file", cfg.Graph.URI)
	}
	if cfg.Graph.Username != "ops" || cfg.Graph.Password != "secret" {
		t.Errorf("graph credentials = %q/%q", cfg.Graph.Username, cfg.Graph.Password)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("llm.api_key = %q", cfg.LLM.APIKey)
	}
	if cfg.Session.Redis.Host != "redis.internal" {
		t.Errorf("redis host = %q", cfg.Session.Redis.Host)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative retrieval limit", "retrieval:\n  limit: -1\n"},
		{"zero candidate cap", "extractor:\n  max_candidates: 0\n"},
		{"lookup cap above candidate cap", "extractor:\n  max_candidates: 10\n  lookup_cap: 30\n"},
		{"bogus session backend", "session:\n  backend: dynamo\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(t, tc.content); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
