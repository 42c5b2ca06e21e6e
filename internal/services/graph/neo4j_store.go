package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// Structural graph elements cannot be bind parameters in Cypher, so label
// and relation type are spliced into query text. Both are validated against
// these fixed whitelists first; they never come from untrusted input.
const (
	conceptLabel    = "Concept"
	relatedRelation = "RELATED_TO"
)

var (
	allowedLabels    = map[string]bool{conceptLabel: true}
	allowedRelations = map[string]bool{relatedRelation: true}
)

// Neo4jStore implements interfaces.GraphStore against a Neo4j server
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.GraphStore = (*Neo4jStore)(nil)

// NewNeo4jStore connects to the configured Neo4j server and verifies
// connectivity. Returns (nil, nil) when no URI is configured: the concept
// graph is optional and ingestion proceeds without it.
func NewNeo4jStore(cfg common.Neo4jConfig, timeoutCfg *common.Config, logger arbor.ILogger) (*Neo4jStore, error) {
	if cfg.URI == "" {
		logger.Info().Msg("No Neo4j URI configured, concept graph disabled")
		return nil, nil
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	timeout := timeoutCfg.Neo4jTimeout()
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	logger.Info().Str("uri", cfg.URI).Msg("Connected to Neo4j")

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

// UpsertConcepts merges a Concept node per name and a RELATED_TO edge per
// consecutive pair. Each write runs in its own transaction, so a failure
// partway leaves the nodes and edges written so far in place.
func (s *Neo4jStore) UpsertConcepts(ctx context.Context, conceptNames []string) error {
	if len(conceptNames) == 0 {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	for _, name := range conceptNames {
		if err := s.mergeNode(ctx, session, conceptLabel, name); err != nil {
			return fmt.Errorf("%w: node %q: %v", models.ErrGraphWrite, name, err)
		}
	}

	for i := 0; i+1 < len(conceptNames); i++ {
		if err := s.mergeEdge(ctx, session, conceptNames[i], conceptNames[i+1], relatedRelation); err != nil {
			return fmt.Errorf("%w: edge %q->%q: %v", models.ErrGraphWrite, conceptNames[i], conceptNames[i+1], err)
		}
	}

	s.logger.Debug().
		Int("nodes", len(conceptNames)).
		Int("edges", len(conceptNames)-1).
		Msg("Concept graph updated")

	return nil
}

func (s *Neo4jStore) mergeNode(ctx context.Context, session neo4j.SessionWithContext, label, name string) error {
	query, err := nodeUpsertQuery(label)
	if err != nil {
		return err
	}
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

func (s *Neo4jStore) mergeEdge(ctx context.Context, session neo4j.SessionWithContext, from, to, relType string) error {
	query, err := edgeUpsertQuery(relType)
	if err != nil {
		return err
	}
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"from_name": from, "to_name": to})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// nodeUpsertQuery builds the MERGE query for a whitelisted label
func nodeUpsertQuery(label string) (string, error) {
	if !allowedLabels[label] {
		return "", fmt.Errorf("label %q is not in the allowed set", label)
	}
	return fmt.Sprintf("MERGE (n:%s {name: $name})", label), nil
}

// edgeUpsertQuery builds the MERGE query for a whitelisted relation type
func edgeUpsertQuery(relType string) (string, error) {
	if !allowedRelations[relType] {
		return "", fmt.Errorf("relation type %q is not in the allowed set", relType)
	}
	return fmt.Sprintf(
		"MATCH (a {name: $from_name}), (b {name: $to_name}) MERGE (a)-[r:%s]->(b)",
		relType,
	), nil
}

// ConceptNames returns all Concept node names sorted ascending
func (s *Neo4jStore) ConceptNames(ctx context.Context) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n:Concept) RETURN n.name AS name ORDER BY n.name", nil)
		if err != nil {
			return nil, err
		}
		var names []string
		for res.Next(ctx) {
			if name, ok := res.Record().Get("name"); ok {
				if s, ok := name.(string); ok {
					names = append(names, s)
				}
			}
		}
		return names, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list concept names: %w", err)
	}

	names := result.([]string)
	sort.Strings(names)
	return names, nil
}

// Snapshot returns all node names and edges for external inspection
func (s *Neo4jStore) Snapshot(ctx context.Context) (*models.GraphSnapshot, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		snapshot := &models.GraphSnapshot{}

		nodes, err := tx.Run(ctx, "MATCH (n) RETURN n.name AS name", nil)
		if err != nil {
			return nil, err
		}
		for nodes.Next(ctx) {
			if name, ok := nodes.Record().Get("name"); ok {
				if s, ok := name.(string); ok {
					snapshot.Nodes = append(snapshot.Nodes, s)
				}
			}
		}
		if err := nodes.Err(); err != nil {
			return nil, err
		}

		edges, err := tx.Run(ctx,
			"MATCH (a)-[r]->(b) RETURN a.name AS from, type(r) AS rel, b.name AS to", nil)
		if err != nil {
			return nil, err
		}
		for edges.Next(ctx) {
			record := edges.Record()
			from, _ := record.Get("from")
			to, _ := record.Get("to")
			rel, _ := record.Get("rel")
			edge := models.GraphEdge{}
			if s, ok := from.(string); ok {
				edge.From = s
			}
			if s, ok := to.(string); ok {
				edge.To = s
			}
			if s, ok := rel.(string); ok {
				edge.Rel = s
			}
			snapshot.Edges = append(snapshot.Edges, edge)
		}
		return snapshot, edges.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read graph snapshot: %w", err)
	}

	return result.(*models.GraphSnapshot), nil
}

// Close releases the driver connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}
