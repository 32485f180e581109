package subgraph

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mohammad-safakhou/graphjudge/internal/graph"
)

// Node is one graph node in a snapshot.
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]graph.Value `json:"properties"`
}

// Relationship is a directed edge between two snapshot nodes.
type Relationship struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Snapshot is a small neighborhood of the graph. Every relationship
// endpoint is guaranteed to be a key of Nodes.
type Snapshot struct {
	Nodes         map[string]Node `json:"nodes"`
	Relationships []Relationship  `json:"relationships"`
}

// Empty reports whether the snapshot holds no nodes.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }

const researcherLookupQuery = `
MATCH (r:Researcher)
WHERE r.name IN $names
OPTIONAL MATCH (r)-[pub:PUBLISHED]->(a:Article)
OPTIONAL MATCH (a)-[in_topic:IN_TOPIC]->(t:Topic)
OPTIONAL MATCH (a)<-[pub2:PUBLISHED]-(co_author:Researcher)
WHERE co_author <> r
WITH collect(DISTINCT r) + collect(DISTINCT a) + collect(DISTINCT t) + collect(DISTINCT co_author) as all_nodes,
     collect(DISTINCT pub) + collect(DISTINCT in_topic) + collect(DISTINCT pub2) as all_rels
RETURN
    [node in all_nodes WHERE node IS NOT NULL | {
        id: id(node),
        label: head(labels(node)),
        properties: properties(node)
    }] as nodes,
    [rel in all_rels WHERE rel IS NOT NULL | {
        source: id(startNode(rel)),
        target: id(endNode(rel)),
        type: type(rel)
    }] as relationships
`

const articleLookupQuery = `
MATCH (a:Article)
WHERE a.title IN $names
OPTIONAL MATCH (r:Researcher)-[pub:PUBLISHED]->(a)
OPTIONAL MATCH (a)-[in_topic:IN_TOPIC]->(t:Topic)
WITH collect(DISTINCT a) + collect(DISTINCT r) + collect(DISTINCT t) as all_nodes,
     collect(DISTINCT pub) + collect(DISTINCT in_topic) as all_rels
RETURN
    [node in all_nodes WHERE node IS NOT NULL | {
        id: id(node),
        label: head(labels(node)),
        properties: properties(node)
    }] as nodes,
    [rel in all_rels WHERE rel IS NOT NULL | {
        source: id(startNode(rel)),
        target: id(endNode(rel)),
        type: type(rel)
    }] as relationships
`

// Extractor reconstructs a graph neighborhood around the entities
// named in a query result.
type Extractor struct {
	querier       graph.Querier
	maxCandidates int
	lookupCap     int
	logger        *log.Logger
}

// NewExtractor creates an extractor. maxCandidates aborts extraction
// when the result mentions too many distinct entities; lookupCap bounds
// how many of them are sent to the lookup query.
func NewExtractor(querier graph.Querier, maxCandidates, lookupCap int, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(log.Writer(), "[SUBGRAPH] ", log.LstdFlags)
	}
	return &Extractor{querier: querier, maxCandidates: maxCandidates, lookupCap: lookupCap, logger: logger}
}

// Extract pulls candidate entity names from rows, looks them up as
// researchers first and articles second, and returns their immediate
// neighborhood. Extraction is best-effort: any failure yields an empty
// snapshot, never an error.
func (e *Extractor) Extract(ctx context.Context, rows []graph.Record) Snapshot {
	snapshot := emptySnapshot()

	names := candidateNames(rows)
	if len(names) == 0 || len(names) >= e.maxCandidates {
		return snapshot
	}
	if len(names) > e.lookupCap {
		names = names[:e.lookupCap]
	}

	params := map[string]interface{}{"names": names}

	records, err := e.querier.Execute(ctx, researcherLookupQuery, params)
	if err != nil {
		e.logger.Printf("graph extraction failed: %v", err)
		return emptySnapshot()
	}
	snapshot = snapshotFromRecords(records)

	if snapshot.Empty() {
		records, err = e.querier.Execute(ctx, articleLookupQuery, params)
		if err != nil {
			e.logger.Printf("graph extraction failed: %v", err)
			return emptySnapshot()
		}
		snapshot = snapshotFromRecords(records)
	}
	return snapshot
}

// Overview returns a bounded slice of the whole graph, for showing
// corpus structure independent of any question.
func (e *Extractor) Overview(ctx context.Context, limit int) (Snapshot, error) {
	query := fmt.Sprintf(`
MATCH (n)
WITH n LIMIT %d
OPTIONAL MATCH (n)-[r]->(m)
RETURN
    collect(DISTINCT {
        id: id(n),
        label: head(labels(n)),
        properties: properties(n)
    }) as nodes,
    collect(DISTINCT {
        source: id(startNode(r)),
        target: id(endNode(r)),
        type: type(r)
    }) as relationships
`, limit)

	records, err := e.querier.Execute(ctx, query, nil)
	if err != nil {
		return emptySnapshot(), fmt.Errorf("graph overview: %w", err)
	}
	return snapshotFromRecords(records), nil
}

func emptySnapshot() Snapshot {
	return Snapshot{Nodes: map[string]Node{}, Relationships: []Relationship{}}
}

// candidateNames collects distinct non-empty string values (including
// string list elements) from rows, in first-seen order. Field names are
// visited sorted so the order is stable across runs.
func candidateNames(rows []graph.Record) []string {
	names := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		names = append(names, s)
	}

	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := row[k]
			switch v.Kind() {
			case graph.KindString:
				s, _ := v.AsString()
				add(s)
			case graph.KindList:
				items, _ := v.AsList()
				for _, item := range items {
					if s, ok := item.AsString(); ok {
						add(s)
					}
				}
			}
		}
	}
	return names
}

// snapshotFromRecords decodes the nodes/relationships columns returned
// by the lookup queries. Relationships referencing a node that is not
// in the snapshot are dropped.
func snapshotFromRecords(records []graph.Record) Snapshot {
	snapshot := emptySnapshot()
	if len(records) == 0 {
		return snapshot
	}
	rec := records[0]

	nodeValues, ok := rec.Get("nodes").AsList()
	if !ok {
		return snapshot
	}
	for _, nv := range nodeValues {
		m, ok := nv.AsMap()
		if !ok {
			continue
		}
		id := valueID(m["id"])
		if id == "" {
			continue
		}
		label, _ := m["label"].AsString()
		props, _ := m["properties"].AsMap()
		snapshot.Nodes[id] = Node{ID: id, Label: label, Properties: props}
	}

	relValues, ok := rec.Get("relationships").AsList()
	if !ok {
		return snapshot
	}
	for _, rv := range relValues {
		m, ok := rv.AsMap()
		if !ok {
			continue
		}
		source := valueID(m["source"])
		target := valueID(m["target"])
		if source == "" || target == "" {
			continue
		}
		if _, ok := snapshot.Nodes[source]; !ok {
			continue
		}
		if _, ok := snapshot.Nodes[target]; !ok {
			continue
		}
		relType, _ := m["type"].AsString()
		snapshot.Relationships = append(snapshot.Relationships, Relationship{
			Source: source,
			Target: target,
			Type:   relType,
		})
	}
	return snapshot
}

// valueID renders a node identifier as a stable string key.
func valueID(v graph.Value) string {
	switch v.Kind() {
	case graph.KindNumber:
		return v.Display()
	case graph.KindString:
		s, _ := v.AsString()
		return s
	default:
		return ""
	}
}
