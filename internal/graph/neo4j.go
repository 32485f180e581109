package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// client talks to a Neo4j server over its HTTP transaction endpoint.
type client struct {
	uri        string
	username   string
	password   string
	database   string
	httpClient *http.Client
}

// NewClient creates a Querier backed by the Neo4j HTTP API.
func NewClient(uri, username, password, database string, timeout time.Duration) Querier {
	if database == "" {
		database = "neo4j"
	}
	return &client{
		uri:        strings.TrimRight(uri, "/"),
		username:   username,
		password:   password,
		database:   database,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type txStatement struct {
	Statement  string                 `json:"statement"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type txRequest struct {
	Statements []txStatement `json:"statements"`
}

type txResponse struct {
	Results []struct {
		Columns []string `json:"columns"`
		Data    []struct {
			Row []Value `json:"row"`
		} `json:"data"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute runs a single Cypher statement in an auto-commit transaction and
// returns the result rows in server order.
func (c *client) Execute(ctx context.Context, query string, params map[string]interface{}) ([]Record, error) {
	body, err := json.Marshal(txRequest{Statements: []txStatement{{Statement: query, Parameters: params}}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/db/%s/tx/commit", c.uri, c.database)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("graph API returned status: %d", resp.StatusCode)
	}

	var out txResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return nil, fmt.Errorf("query failed: %s: %s", e.Code, e.Message)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}

	res := out.Results[0]
	records := make([]Record, 0, len(res.Data))
	for _, d := range res.Data {
		rec := make(Record, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(d.Row) {
				rec[col] = d.Row[i]
			} else {
				rec[col] = Null()
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
