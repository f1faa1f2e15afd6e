// Package resolver implements the cross-store query compositions. Each
// operation is one request: a short sequence of store calls where later
// steps depend on earlier results, so the orchestration is sequential by
// construction. Every fetch-by-id-set step is a single batched store call;
// no operation issues one store round trip per item.
//
// Identity resolution misses surface as store.NotFoundError, resolved
// queries with zero qualifying rows as store.EmptyResultError. Email to
// person resolution happens at most once per request and is never cached
// across requests.
package resolver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
)

// Resolver composes the three stores into the query operations.
type Resolver struct {
	docs  store.DocumentStore
	graph store.GraphStore
	rel   store.RelationalStore
	log   zerolog.Logger
}

// New builds a Resolver over the given stores.
func New(docs store.DocumentStore, graph store.GraphStore, rel store.RelationalStore, log zerolog.Logger) *Resolver {
	return &Resolver{docs: docs, graph: graph, rel: rel, log: log}
}

// personByEmail resolves an email address to its person document. The
// email field is an array; the match is exact against any element.
func (r *Resolver) personByEmail(ctx context.Context, email string) (models.Person, error) {
	doc, err := r.docs.FindOne(ctx, mongodb.CollectionPerson, store.Document{
		"email": store.Document{"$in": []string{email}},
	})
	if err != nil {
		return models.Person{}, fmt.Errorf("resolving email: %w", err)
	}
	if doc == nil {
		return models.Person{}, store.NotFound("person", email)
	}
	person, err := models.PersonFromDocument(doc)
	if err != nil {
		return models.Person{}, fmt.Errorf("decoding person for %q: %w", email, err)
	}
	return person, nil
}

// postsByCreator fetches every post created by one person.
func (r *Resolver) postsByCreator(ctx context.Context, personID int64) ([]models.Post, error) {
	docs, err := r.docs.Find(ctx, mongodb.CollectionPost, store.Document{"CreatorPersonId": personID}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching posts by creator: %w", err)
	}
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := models.PostFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed post document")
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// forumsByIDs batch-fetches forum documents, keyed by id. Unresolvable
// ids are simply missing from the map.
func (r *Resolver) forumsByIDs(ctx context.Context, ids []int64) (map[int64]models.Forum, error) {
	out := make(map[int64]models.Forum, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := r.docs.Find(ctx, mongodb.CollectionForum, store.Document{"id": store.Document{"$in": ids}}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching forums: %w", err)
	}
	for _, doc := range docs {
		forum, err := models.ForumFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed forum document")
			continue
		}
		out[forum.ID] = forum
	}
	return out, nil
}

// personsByIDs batch-fetches person documents, keyed by id.
func (r *Resolver) personsByIDs(ctx context.Context, ids []int64) (map[int64]models.Person, error) {
	out := make(map[int64]models.Person, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := r.docs.Find(ctx, mongodb.CollectionPerson, store.Document{"id": store.Document{"$in": ids}}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching persons: %w", err)
	}
	for _, doc := range docs {
		person, err := models.PersonFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed person document")
			continue
		}
		out[person.ID] = person
	}
	return out, nil
}

// postsByIDs batch-fetches post documents, keyed by id.
func (r *Resolver) postsByIDs(ctx context.Context, ids []int64) (map[int64]models.Post, error) {
	out := make(map[int64]models.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := r.docs.Find(ctx, mongodb.CollectionPost, store.Document{"id": store.Document{"$in": ids}}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	for _, doc := range docs {
		post, err := models.PostFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed post document")
			continue
		}
		out[post.ID] = post
	}
	return out, nil
}

// recordInt64 reads an integer field from a graph record.
func recordInt64(rec store.Record, field string) (int64, bool) {
	return models.AsInt64(rec[field])
}

// rowString reads a text column from a relational row.
func rowString(row store.Row, column string) string {
	if s, ok := row[column].(string); ok {
		return s
	}
	return ""
}

func uniqueInt64(values []int64) []int64 {
	seen := make(map[int64]struct{}, len(values))
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
