// Package models defines the entity records of the social-network benchmark
// dataset and the absent-value handling shared by every layer above the
// stores.
//
// Entities are split across three backends. Person, Post, Comment and Forum
// are schema-flexible documents keyed by an application-assigned numeric id;
// they are decoded from raw store documents through the From*Document
// constructors, which enforce the one shape requirement the system has: a
// numeric id must be present. Place, Organization, Tag and TagClass are
// fixed-schema relational rows declared as GORM models so the schema and
// its foreign keys can be created from the structs.
//
// The source CSV files serialize missing text fields as a floating-point
// NaN. [OptionalString] keeps "no value" distinguishable from an empty
// string and from the literal string "NaN"; [Absent] is the single
// emptiness predicate used when merging partial results.
package models
