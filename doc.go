// Package socialbench implements a polyglot-persistence social network
// backend that spreads a single logical dataset across three specialized
// stores and answers queries by composing partial results from each.
//
// The same social graph is held in three places at once:
//
//   - A document store (MongoDB) keeps the dynamic entities: persons,
//     posts, comments, and forums, each as a flat document keyed by id.
//   - A graph store (Neo4j) keeps the relationships between them: who
//     knows whom, who likes what, forum memberships, declared interests,
//     tag attachments, and study/work affiliations.
//   - A relational store (PostgreSQL) keeps the static reference data:
//     places, organizations, tag classes, and tags.
//
// No single store can answer an interesting question on its own. The
// resolver package walks a query across stores, collecting ids from one
// backend and hydrating them from another, until a complete answer is
// assembled.
//
// # Architecture Overview
//
// The application is organized in three layers:
//
//   - [github.com/maadb/socialbench/pkg/socialbench] - Command
//     orchestration and the HTTP API. The run, migrate, and load commands
//     all start here.
//   - [github.com/maadb/socialbench/pkg/resolver] and
//     [github.com/maadb/socialbench/pkg/assemble] - Cross-store query
//     composition and result merging.
//   - [github.com/maadb/socialbench/pkg/store] - The three backend
//     interfaces and their MongoDB, Neo4j, and PostgreSQL
//     implementations.
//
// The loader package populates all three stores from pipe-delimited flat
// files. Loads are idempotent: keys already present in a store are never
// inserted twice, so an interrupted load can be re-run safely.
//
// # Commands
//
//	socialbench migrate   # create indexes, constraints, and tables
//	socialbench load      # bulk-import a dataset directory
//	socialbench run       # serve the query API
package socialbench
