// Package neo4j implements the graph store over the official Neo4j bolt
// driver.
//
// Every Read and Write call opens its own session and managed transaction
// and closes it before returning, so no caller ever holds graph state
// across an unrelated store round trip. Results are fully buffered; the
// traversals this system runs return bounded, aggregate-sized row sets.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/maadb/socialbench/pkg/store"
)

// Node labels of the benchmark graph.
const (
	LabelPerson     = "Person"
	LabelPost       = "Post"
	LabelComment    = "Comment"
	LabelForum      = "Forum"
	LabelTag        = "Tag"
	LabelUniversity = "University"
	LabelCompany    = "Company"
)

// Relationship types stored in the graph.
const (
	RelKnows       = "KNOWS"
	RelLikes       = "LIKES"
	RelMemberOf    = "MEMBER_OF"
	RelHasInterest = "HAS_INTEREST"
	RelHasTag      = "HAS_TAG"
	RelStudyAt     = "STUDY_AT"
	RelWorkAt      = "WORK_AT"
)

// uniqueIDConstraints gives every node label a unique id, which also makes
// the loader's MERGE-by-id node pass cheap.
var uniqueIDConstraints = []string{
	"CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT post_id IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT comment_id IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE",
	"CREATE CONSTRAINT forum_id IF NOT EXISTS FOR (f:Forum) REQUIRE f.id IS UNIQUE",
	"CREATE CONSTRAINT tag_id IF NOT EXISTS FOR (t:Tag) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT university_id IF NOT EXISTS FOR (u:University) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT company_id IF NOT EXISTS FOR (c:Company) REQUIRE c.id IS UNIQUE",
}

// Store implements store.GraphStore.
type Store struct {
	driver neo4j.DriverWithContext
	dbName string
}

// New creates the bolt driver and verifies connectivity.
func New(ctx context.Context, uri, username, password, dbName string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, store.Unavailable("graph", err)
	}
	return &Store{driver: driver, dbName: dbName}, nil
}

func (s *Store) Read(ctx context.Context, query string, params map[string]any) ([]store.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.dbName,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]store.Record, 0, len(records))
		for _, record := range records {
			out = append(out, record.AsMap())
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph read query: %w", err)
	}
	return rows.([]store.Record), nil
}

func (s *Store) Write(ctx context.Context, query string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.dbName,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		// Drain the stream so server-side failures surface.
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("graph write query: %w", err)
	}
	return nil
}

func (s *Store) EnsureConstraints(ctx context.Context) error {
	for _, constraint := range uniqueIDConstraints {
		if err := s.Write(ctx, constraint, nil); err != nil {
			return fmt.Errorf("creating graph constraint: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return store.Unavailable("graph", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
