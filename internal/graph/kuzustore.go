//go:build cgo

package graph

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path, so an index built by one command can be queried by the next.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// KuzuDB creates the leaf directory itself.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Layer(
		id STRING,
		name STRING,
		ord INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Component(
		id STRING,
		name STRING,
		layer STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS IN_LAYER(FROM Component TO Layer)`,
	`CREATE REL TABLE IF NOT EXISTS FLOWS_TO(FROM Component TO Component, label STRING)`,
	`CREATE REL TABLE IF NOT EXISTS CONDITIONAL_FLOW(FROM Component TO Component, label STRING, cond STRING)`,
}

// flowTables lists the relationship tables holding flows.
var flowTables = []string{string(FlowKindFlows), string(FlowKindConditional)}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddLayer inserts a Layer node.
func (s *KuzuStore) AddLayer(_ context.Context, node LayerNode) error {
	return s.exec(
		"CREATE (l:Layer {id: $id, name: $name, ord: $ord})",
		map[string]any{
			"id":   node.ID,
			"name": node.Name,
			"ord":  int64(node.Order),
		},
	)
}

// AddComponent inserts a Component node and links it to its layer when the
// layer exists.
func (s *KuzuStore) AddComponent(_ context.Context, node ComponentNode) error {
	params := map[string]any{
		"id":    node.ID,
		"name":  node.Name,
		"layer": node.Layer,
	}
	if err := s.exec("CREATE (c:Component {id: $id, name: $name, layer: $layer})", params); err != nil {
		return err
	}
	return s.exec(
		`MATCH (c:Component {id: $id}), (l:Layer {id: $layer})
		 CREATE (c)-[:IN_LAYER]->(l)`,
		map[string]any{"id": node.ID, "layer": node.Layer},
	)
}

// AddFlow inserts a flow edge between two components.
func (s *KuzuStore) AddFlow(_ context.Context, edge FlowEdge) error {
	switch edge.Kind {
	case FlowKindFlows:
		return s.exec(
			`MATCH (a:Component {id: $src}), (b:Component {id: $dst})
			 CREATE (a)-[:FLOWS_TO {label: $label}]->(b)`,
			map[string]any{"src": edge.SourceID, "dst": edge.TargetID, "label": edge.Label},
		)
	case FlowKindConditional:
		return s.exec(
			`MATCH (a:Component {id: $src}), (b:Component {id: $dst})
			 CREATE (a)-[:CONDITIONAL_FLOW {label: $label, cond: $cond}]->(b)`,
			map[string]any{"src": edge.SourceID, "dst": edge.TargetID, "label": edge.Label, "cond": edge.Condition},
		)
	default:
		return fmt.Errorf("kuzu: unsupported flow kind: %s", edge.Kind)
	}
}

// ---------- Read operations ----------

// GetComponent retrieves a Component by id, or returns nil if not found.
func (s *KuzuStore) GetComponent(_ context.Context, id string) (*ComponentNode, error) {
	rows, err := s.query(
		"MATCH (c:Component {id: $id}) RETURN c.id, c.name, c.layer",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToComponent(rows[0]), nil
}

// QueryComponents returns components whose id or name contains the query,
// ignoring case. A limit <= 0 returns all matches.
func (s *KuzuStore) QueryComponents(_ context.Context, queryStr string, limit int) ([]ComponentNode, error) {
	cypher := `MATCH (c:Component)
		 WHERE lower(c.name) CONTAINS lower($q) OR c.id CONTAINS lower($q)
		 RETURN c.id, c.name, c.layer ORDER BY c.id`
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]ComponentNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToComponent(r))
	}
	return out, nil
}

// GetLayers returns all layers ordered by ord, with sorted member ids.
func (s *KuzuStore) GetLayers(_ context.Context) ([]LayerNode, error) {
	rows, err := s.query("MATCH (l:Layer) RETURN l.id, l.name, l.ord ORDER BY l.ord", nil)
	if err != nil {
		return nil, err
	}
	out := make([]LayerNode, 0, len(rows))
	for _, r := range rows {
		id := toString(r[0])
		memberRows, err := s.query(
			"MATCH (c:Component)-[:IN_LAYER]->(l:Layer {id: $id}) RETURN c.id",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		sort.Strings(members)
		out = append(out, LayerNode{
			ID:      id,
			Name:    toString(r[1]),
			Order:   toInt(r[2]),
			Members: members,
		})
	}
	return out, nil
}

// GetAllFlows returns every flow edge across both flow tables.
func (s *KuzuStore) GetAllFlows(_ context.Context) ([]FlowEdge, error) {
	var edges []FlowEdge
	rows, err := s.query("MATCH (a:Component)-[f:FLOWS_TO]->(b:Component) RETURN a.id, b.id, f.label", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		edges = append(edges, FlowEdge{
			SourceID: toString(r[0]),
			TargetID: toString(r[1]),
			Label:    toString(r[2]),
			Kind:     FlowKindFlows,
		})
	}
	rows, err = s.query("MATCH (a:Component)-[f:CONDITIONAL_FLOW]->(b:Component) RETURN a.id, b.id, f.label, f.cond", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		edges = append(edges, FlowEdge{
			SourceID:  toString(r[0]),
			TargetID:  toString(r[1]),
			Label:     toString(r[2]),
			Condition: toString(r[3]),
			Kind:      FlowKindConditional,
		})
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over both flow tables starting from id.
// It returns one DependencyChain per reachable component.
func (s *KuzuStore) GetDependencies(_ context.Context, id string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return s.walk(id, dir, maxDepth, flowTables)
}

// walk runs a BFS from id over the given relationship tables.
func (s *KuzuStore) walk(id string, dir Direction, maxDepth int, tables []string) ([]DependencyChain, error) {
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{id: true}
	queue := []bfsEntry{{path: []string{id}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.flowNeighbors(tip, dir, tables)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// flowNeighbors returns immediate component neighbors along the given tables.
func (s *KuzuStore) flowNeighbors(id string, dir Direction, tables []string) ([]string, error) {
	var out []string
	for _, table := range tables {
		// Table names are fixed internal constants, not user input.
		var cypher string
		switch dir {
		case DirectionDownstream:
			cypher = fmt.Sprintf("MATCH (a:Component {id: $id})-[:%s]->(b:Component) RETURN b.id", table)
		case DirectionUpstream:
			cypher = fmt.Sprintf("MATCH (a:Component)-[:%s]->(b:Component {id: $id}) RETURN a.id", table)
		default:
			return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
		}
		rows, err := s.query(cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, toString(r[0]))
		}
	}
	return out, nil
}

// AssessImpact walks unconditional flows upstream from each failing
// component to find who depends on it, then scores the share of all
// components affected.
func (s *KuzuStore) AssessImpact(_ context.Context, failing []string) (*ImpactResult, error) {
	total, err := s.countTable("Component")
	if err != nil {
		return nil, err
	}

	directSet := map[string]bool{}
	transitiveSet := map[string]bool{}
	unconditional := []string{string(FlowKindFlows)}

	for _, f := range failing {
		chains, err := s.walk(f, DirectionUpstream, 1, unconditional)
		if err != nil {
			return nil, err
		}
		for _, c := range chains {
			directSet[c.Nodes[len(c.Nodes)-1]] = true
		}

		all, err := s.walk(f, DirectionUpstream, 10, unconditional)
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			transitiveSet[c.Nodes[len(c.Nodes)-1]] = true
		}
	}

	failingSet := map[string]bool{}
	for _, f := range failing {
		failingSet[f] = true
	}
	direct := filterKeys(directSet, failingSet)
	transitive := filterKeys(transitiveSet, failingSet)

	risk := 0.0
	if total > 0 {
		risk = math.Min(1.0, float64(len(transitive))/float64(total))
	}

	return &ImpactResult{
		DirectlyAffected:     direct,
		TransitivelyAffected: transitive,
		RiskScore:            risk,
	}, nil
}

// ---------- Stats ----------

// Stats returns component, flow and layer counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	components, err := s.countTable("Component")
	if err != nil {
		return nil, err
	}
	layers, err := s.countTable("Layer")
	if err != nil {
		return nil, err
	}
	edges := 0
	for _, t := range flowTables {
		rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t), nil)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			edges += toInt(rows[0][0])
		}
	}
	return &GraphStats{
		NodeCount:    components,
		EdgeCount:    edges,
		ClusterCount: layers,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToComponent converts an (id, name, layer) row.
func rowToComponent(r []any) *ComponentNode {
	return &ComponentNode{
		ID:    toString(r[0]),
		Name:  toString(r[1]),
		Layer: toString(r[2]),
	}
}

// filterKeys returns keys from set that are not in exclude, sorted.
func filterKeys(set, exclude map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if !exclude[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ---------- Type coercion helpers ----------

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
