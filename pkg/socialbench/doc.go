// Package socialbench wires the polyglot stores, the cross-store query
// resolver and the bulk loader into a runnable application.
//
// The system keeps one social-network dataset across three stores, each
// holding the slice it is best at: a document store for persons, posts,
// comments and forums; a graph store for the relationships between them
// (KNOWS, LIKES, MEMBER_OF, HAS_INTEREST, HAS_TAG, STUDY_AT, WORK_AT);
// and a relational store for the static reference data (places,
// organizations, tag classes, tags). Queries compose results across all
// three, and the loader populates all three idempotently from the shared
// flat-file dataset.
//
// Three commands cover the lifecycle: migrate prepares indexes,
// constraints and schema; load bulk-imports a dataset directory; run
// serves the HTTP query API.
package socialbench
