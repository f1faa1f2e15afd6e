// Package mongodb implements the document store over the official MongoDB
// driver.
//
// Documents keep the dataset's original field names (id, CreatorPersonId,
// ParentPostId, ContainerForumId, email, ...) so filters written by the
// resolver and the loader line up with what the import produced. The only
// indexes the system needs are the per-collection id indexes and the
// multikey email index on person, created by EnsureIndexes at migrate time.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
)

// Collection names of the document entities.
const (
	CollectionPerson  = "person"
	CollectionPost    = "post"
	CollectionComment = "comment"
	CollectionForum   = "forum"
)

const connectTimeout = 15 * time.Second

// Store implements store.DocumentStore.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to the MongoDB instance at uri and targets dbName. The
// connection is verified before returning; an unreachable server is fatal
// for the caller, not retried here.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, store.Unavailable("document", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Document) (store.Document, error) {
	var doc store.Document
	err := s.db.Collection(collection).FindOne(ctx, bson.M(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findOne on %s: %w", collection, err)
	}
	return doc, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter, projection store.Document) ([]store.Document, error) {
	opts := options.Find()
	if projection != nil {
		opts.SetProjection(bson.M(projection))
	}
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find on %s: %w", collection, err)
	}
	var docs []store.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find on %s: draining cursor: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Aggregate(ctx context.Context, collection string, pipeline []store.Document) ([]store.Document, error) {
	stages := make(mongo.Pipeline, 0, len(pipeline))
	for _, stage := range pipeline {
		d := bson.D{}
		for k, v := range stage {
			d = append(d, bson.E{Key: k, Value: v})
		}
		stages = append(stages, d)
	}
	cursor, err := s.db.Collection(collection).Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("aggregate on %s: %w", collection, err)
	}
	var docs []store.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("aggregate on %s: draining cursor: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) BulkInsert(ctx context.Context, collection string, docs []store.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(bson.M(doc)))
	}
	result, err := s.db.Collection(collection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		// An unordered bulk write reports per-document errors but still
		// applies the rest; surface the error with whatever count landed.
		inserted := 0
		if result != nil {
			inserted = int(result.InsertedCount)
		}
		return inserted, fmt.Errorf("bulk insert into %s: %w", collection, err)
	}
	return int(result.InsertedCount), nil
}

func (s *Store) DistinctKeys(ctx context.Context, collection, field string) ([]int64, error) {
	values, err := s.db.Collection(collection).Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s on %s: %w", field, collection, err)
	}
	keys := make([]int64, 0, len(values))
	for _, v := range values {
		if n, ok := models.AsInt64(v); ok {
			keys = append(keys, n)
		}
	}
	return keys, nil
}

// EnsureIndexes creates the id index for every document collection and the
// multikey email index the email-to-person resolution depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, collection := range []string{CollectionPerson, CollectionPost, CollectionComment, CollectionForum} {
		_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName(collection + "_id_index"),
		})
		if err != nil {
			return fmt.Errorf("creating id index on %s: %w", collection, err)
		}
	}
	_, err := s.db.Collection(CollectionPerson).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("person_email_index"),
	})
	if err != nil {
		return fmt.Errorf("creating email index on person: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return store.Unavailable("document", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
