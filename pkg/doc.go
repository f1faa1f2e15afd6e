// Package pkg contains all the sub-packages for the socialbench application.
//
// # Application Layer
//
// [github.com/maadb/socialbench/pkg/socialbench] - Application wiring,
// command parsing, and HTTP handlers. Use this package when adding new
// commands or API routes.
//
// # Domain Layer
//
// [github.com/maadb/socialbench/pkg/models] - Entities of the social
// network and their document constructors, plus the optional-field
// handling that datasets with sparse columns require.
//
// [github.com/maadb/socialbench/pkg/resolver] - Cross-store query
// operations. Each operation visits two or three backends and merges
// their partial results.
//
// [github.com/maadb/socialbench/pkg/assemble] - Result shaping shared by
// the resolver: merge and sort helpers and the response types they
// produce.
//
// [github.com/maadb/socialbench/pkg/loader] - Idempotent bulk import of
// pipe-delimited flat files into all three stores.
//
// # Infrastructure Layer
//
// [github.com/maadb/socialbench/pkg/store] - The DocumentStore,
// GraphStore, and RelationalStore interfaces together with the error
// taxonomy the resolver maps onto HTTP statuses.
//
// [github.com/maadb/socialbench/pkg/store/mongodb],
// [github.com/maadb/socialbench/pkg/store/neo4j], and
// [github.com/maadb/socialbench/pkg/store/postgres] - The backend
// implementations.
//
// [github.com/maadb/socialbench/pkg/logger] - Structured logging setup
// used by every command.
package pkg
