package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientExecute(t *testing.T) {
	var gotPath string
	var gotBody txRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if user, pass, ok := r.BasicAuth(); !ok || user != "neo4j" || pass != "secret" {
			t.Errorf("missing or wrong basic auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [{
				"columns": ["name", "count"],
				"data": [
					{"row": ["Emily Chen", 3]},
					{"row": ["Raj Patel", 1]}
				]
			}],
			"errors": []
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "neo4j", "secret", "neo4j", 5*time.Second)
	records, err := c.Execute(context.Background(), "MATCH (n) RETURN n.name as name, count(n) as count", map[string]interface{}{"limit": 5})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if gotPath != "/db/neo4j/tx/commit" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(gotBody.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(gotBody.Statements))
	}
	if gotBody.Statements[0].Parameters["limit"] != float64(5) {
		t.Fatalf("parameters not forwarded: %v", gotBody.Statements[0].Parameters)
	}

	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	if name, _ := records[0].Get("name").AsString(); name != "Emily Chen" {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if count, _ := records[1].Get("count").AsNumber(); count != 1 {
		t.Fatalf("unexpected second record: %v", records[1])
	}
}

func TestClientExecuteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [],
			"errors": [{"code": "Neo.ClientError.Statement.SyntaxError", "message": "Invalid input"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "neo4j", "secret", "", 5*time.Second)
	_, err := c.Execute(context.Background(), "MATCHX", nil)
	if err == nil {
		t.Fatalf("expected error for query failure")
	}
	if !strings.Contains(err.Error(), "SyntaxError") {
		t.Fatalf("error should carry the server code, got: %v", err)
	}
}

func TestClientExecuteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "neo4j", "secret", "neo4j", 5*time.Second)
	if _, err := c.Execute(context.Background(), "MATCH (n) RETURN n", nil); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestClientDefaultsDatabase(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"results":[],"errors":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "neo4j", "secret", "", 5*time.Second)
	if _, err := c.Execute(context.Background(), "RETURN 1", nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotPath != "/db/neo4j/tx/commit" {
		t.Fatalf("expected default database in path, got %q", gotPath)
	}
}
