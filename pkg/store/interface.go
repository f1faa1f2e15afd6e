// Package store defines the three narrow backend interfaces the query
// engine and the bulk loader are written against, plus the error taxonomy
// shared by every operation.
//
// The system deliberately does not hide the polyglot split behind one
// repository abstraction: the document, graph and relational stores answer
// different kinds of questions and the resolver stitches their partial
// results together explicitly. Each interface is the minimal surface the
// orchestration layer needs, so tests run against in-memory fakes and the
// engines stay swappable.
//
// Implementations:
//   - [github.com/maadb/socialbench/pkg/store/mongodb.Store] backs
//     DocumentStore with the official MongoDB driver.
//   - [github.com/maadb/socialbench/pkg/store/neo4j.Store] backs
//     GraphStore with the Neo4j bolt driver, one session per call.
//   - [github.com/maadb/socialbench/pkg/store/postgres.Store] backs
//     RelationalStore with GORM over a bounded connection pool.
package store

import "context"

// Document is a schema-flexible record keyed by a numeric "id" field.
type Document = map[string]any

// Record is one row of a graph traversal result, keyed by the query's
// return aliases.
type Record = map[string]any

// Row is one relational result row, keyed by column name.
type Row = map[string]any

// DocumentStore is the narrow surface over the document database.
// Collections are queried by field filters in the store's native filter
// shape (MongoDB-style operator maps).
type DocumentStore interface {
	// FindOne returns the first matching document, or (nil, nil) when
	// nothing matches.
	FindOne(ctx context.Context, collection string, filter Document) (Document, error)

	// Find returns all matching documents. projection may be nil; when set
	// it limits the returned fields.
	Find(ctx context.Context, collection string, filter, projection Document) ([]Document, error)

	// Aggregate runs a pipeline and returns the resulting documents.
	Aggregate(ctx context.Context, collection string, pipeline []Document) ([]Document, error)

	// BulkInsert performs an unordered insert of docs and returns the
	// number inserted.
	BulkInsert(ctx context.Context, collection string, docs []Document) (int, error)

	// DistinctKeys returns every value of field present in the collection.
	// The loader uses it to capture the de-duplication key set once per run.
	DistinctKeys(ctx context.Context, collection, field string) ([]int64, error)

	// EnsureIndexes creates the id indexes the query paths depend on.
	// Safe to call repeatedly.
	EnsureIndexes(ctx context.Context) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphStore runs traversal queries with named parameters. Every call is
// its own session and transaction scope; callers never hold graph state
// across unrelated store round trips.
type GraphStore interface {
	// Read runs a read-only traversal and returns its rows.
	Read(ctx context.Context, query string, params map[string]any) ([]Record, error)

	// Write runs a mutating statement inside a write transaction.
	Write(ctx context.Context, query string, params map[string]any) error

	// EnsureConstraints creates the per-label unique id constraints.
	// Safe to call repeatedly.
	EnsureConstraints(ctx context.Context) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// RelationalStore executes parameterized SQL against a bounded connection
// pool. Schema DDL is issued once at migrate time, never per request.
type RelationalStore interface {
	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, sql string, args ...any) error

	// FetchAll runs a query and buffers every row.
	FetchAll(ctx context.Context, sql string, args ...any) ([]Row, error)

	// InsertRows bulk-inserts rows into table in batches. Conflicting
	// primary keys are skipped (ON CONFLICT DO NOTHING) so repeated loads
	// stay idempotent even when the caller's key set is stale.
	InsertRows(ctx context.Context, table string, rows []Row, batchSize int) (int, error)

	// ExistingKeys returns every primary key already present in table.
	ExistingKeys(ctx context.Context, table string) ([]int64, error)

	// CreateSchema creates the reference tables without foreign keys.
	CreateSchema(ctx context.Context) error

	// AddForeignKeys attaches the deferred foreign-key constraints after
	// every referenced table has been loaded.
	AddForeignKeys(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}
