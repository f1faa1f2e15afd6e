package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
)

// fakeDocs serves in-memory collections through the same filter shapes the
// resolver sends to the real store: exact matches and $in lists, with an
// array-valued field matching when any element is in the list.
type fakeDocs struct {
	collections map[string][]store.Document
	aggregate   func(collection string, pipeline []store.Document) []store.Document
	findCalls   map[string]int
}

func (f *fakeDocs) FindOne(ctx context.Context, collection string, filter store.Document) (store.Document, error) {
	for _, doc := range f.collections[collection] {
		if matchFilter(doc, filter) {
			return doc, nil
		}
	}
	return nil, nil
}

func (f *fakeDocs) Find(ctx context.Context, collection string, filter, projection store.Document) ([]store.Document, error) {
	if f.findCalls == nil {
		f.findCalls = make(map[string]int)
	}
	f.findCalls[collection]++
	var out []store.Document
	for _, doc := range f.collections[collection] {
		if matchFilter(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocs) Aggregate(ctx context.Context, collection string, pipeline []store.Document) ([]store.Document, error) {
	if f.aggregate == nil {
		return nil, nil
	}
	return f.aggregate(collection, pipeline), nil
}

func (f *fakeDocs) BulkInsert(ctx context.Context, collection string, docs []store.Document) (int, error) {
	return 0, nil
}

func (f *fakeDocs) DistinctKeys(ctx context.Context, collection, field string) ([]int64, error) {
	return nil, nil
}

func (f *fakeDocs) EnsureIndexes(ctx context.Context) error { return nil }
func (f *fakeDocs) Ping(ctx context.Context) error          { return nil }
func (f *fakeDocs) Close(ctx context.Context) error         { return nil }

func matchFilter(doc, filter store.Document) bool {
	for field, cond := range filter {
		switch c := cond.(type) {
		case store.Document:
			list, ok := c["$in"]
			if !ok || !valueIn(doc[field], list) {
				return false
			}
		default:
			if !valueEq(doc[field], cond) {
				return false
			}
		}
	}
	return true
}

func valueIn(val, list any) bool {
	switch l := list.(type) {
	case []string:
		for _, want := range l {
			switch v := val.(type) {
			case string:
				if v == want {
					return true
				}
			case []string:
				for _, s := range v {
					if s == want {
						return true
					}
				}
			case []any:
				for _, e := range v {
					if s, ok := e.(string); ok && s == want {
						return true
					}
				}
			}
		}
	case []int64:
		n, ok := models.AsInt64(val)
		if !ok {
			return false
		}
		for _, want := range l {
			if n == want {
				return true
			}
		}
	}
	return false
}

func valueEq(val, want any) bool {
	if a, ok := models.AsInt64(val); ok {
		if b, ok := models.AsInt64(want); ok {
			return a == b
		}
	}
	return val == want
}

// fakeGraph routes Read through a per-test hook.
type fakeGraph struct {
	read func(query string, params map[string]any) ([]store.Record, error)
}

func (f *fakeGraph) Read(ctx context.Context, query string, params map[string]any) ([]store.Record, error) {
	if f.read == nil {
		return nil, nil
	}
	return f.read(query, params)
}

func (f *fakeGraph) Write(ctx context.Context, query string, params map[string]any) error {
	return nil
}

func (f *fakeGraph) EnsureConstraints(ctx context.Context) error { return nil }
func (f *fakeGraph) Ping(ctx context.Context) error              { return nil }
func (f *fakeGraph) Close(ctx context.Context) error             { return nil }

// fakeRel routes FetchAll through a per-test hook.
type fakeRel struct {
	fetchAll func(sql string, args []any) ([]store.Row, error)
}

func (f *fakeRel) Execute(ctx context.Context, sql string, args ...any) error { return nil }

func (f *fakeRel) FetchAll(ctx context.Context, sql string, args ...any) ([]store.Row, error) {
	if f.fetchAll == nil {
		return nil, nil
	}
	return f.fetchAll(sql, args)
}

func (f *fakeRel) InsertRows(ctx context.Context, table string, rows []store.Row, batchSize int) (int, error) {
	return 0, nil
}

func (f *fakeRel) ExistingKeys(ctx context.Context, table string) ([]int64, error) {
	return nil, nil
}

func (f *fakeRel) CreateSchema(ctx context.Context) error   { return nil }
func (f *fakeRel) AddForeignKeys(ctx context.Context) error { return nil }
func (f *fakeRel) Ping(ctx context.Context) error           { return nil }
func (f *fakeRel) Close() error                             { return nil }

func newTestResolver(docs *fakeDocs, graph *fakeGraph, rel *fakeRel) *Resolver {
	if docs == nil {
		docs = &fakeDocs{}
	}
	if graph == nil {
		graph = &fakeGraph{}
	}
	if rel == nil {
		rel = &fakeRel{}
	}
	return New(docs, graph, rel, zerolog.Nop())
}

func personDoc(id int64, first, last string, emails []string, extra store.Document) store.Document {
	doc := store.Document{"id": id, "firstName": first, "lastName": last, "email": emails}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func TestPostsByEmail(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com", "jz@example.org"}, nil),
		},
		mongodb.CollectionPost: {
			{"id": int64(10), "CreatorPersonId": int64(1), "content": "first"},
			{"id": int64(11), "CreatorPersonId": int64(1), "imageFile": "photo11.jpg"},
			{"id": int64(12), "CreatorPersonId": int64(2), "content": "someone else"},
		},
	}}
	r := newTestResolver(docs, nil, nil)

	t.Run("MatchesAnyAddress", func(t *testing.T) {
		posts, err := r.PostsByEmail(context.Background(), "jz@example.org")
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, int64(10), posts[0].ID)
		assert.Equal(t, int64(11), posts[1].ID)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := r.PostsByEmail(context.Background(), "nobody@example.com")
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "person", notFound.Entity)
	})
}

func TestForumsOfPerson(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, nil),
		},
		mongodb.CollectionForum: {
			{"id": int64(30), "title": "Group for Tennis"},
			{"id": int64(31), "title": "Wall of Maria"},
		},
	}}

	t.Run("MergedAndSorted", func(t *testing.T) {
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			if strings.Contains(query, "member_count") {
				assert.ElementsMatch(t, []int64{30, 31}, params["forum_ids"])
				return []store.Record{
					{"forum_id": int64(30), "member_count": int64(71)},
					{"forum_id": int64(31), "member_count": int64(2)},
				}, nil
			}
			assert.Equal(t, int64(1), params["person_id"])
			return []store.Record{
				{"forum_id": int64(31), "membership_creation_date": "2012-01-05"},
				{"forum_id": int64(30), "membership_creation_date": "2010-03-01"},
			}, nil
		}}
		r := newTestResolver(docs, graph, nil)

		out, err := r.ForumsOfPerson(context.Background(), "jan@example.com")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(30), out[0].ForumID, "earliest membership first")
		assert.Equal(t, "Group for Tennis", out[0].Title)
		assert.Equal(t, int64(71), out[0].MemberCount)
		assert.Equal(t, int64(31), out[1].ForumID)
	})

	t.Run("NoMemberships", func(t *testing.T) {
		graph := &fakeGraph{read: func(string, map[string]any) ([]store.Record, error) {
			return nil, nil
		}}
		r := newTestResolver(docs, graph, nil)

		_, err := r.ForumsOfPerson(context.Background(), "jan@example.com")
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "forum membership", notFound.Entity)
	})
}

func TestCommentersWhoKnow(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, nil),
			personDoc(5, "Ada", "Ng", []string{"ada@example.com"}, nil),
			personDoc(6, "Omar", "Haddad", []string{"omar@example.com"}, nil),
		},
		mongodb.CollectionPost: {
			{"id": int64(10), "CreatorPersonId": int64(1), "content": "hello", "ContainerForumId": int64(30)},
		},
		mongodb.CollectionComment: {
			{"id": int64(100), "CreatorPersonId": int64(5), "ParentPostId": int64(10), "content": "nice"},
			{"id": int64(101), "CreatorPersonId": int64(6), "ParentPostId": int64(10), "content": "stranger"},
		},
		mongodb.CollectionForum: {
			{"id": int64(30), "title": "Group for Tennis"},
		},
	}}

	t.Run("OnlyKnownCommentersSurvive", func(t *testing.T) {
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			assert.Contains(t, query, "KNOWS")
			assert.Equal(t, int64(1), params["target_id"])
			assert.ElementsMatch(t, []int64{5, 6}, params["commenter_ids"], "one batched query over all commenters")
			return []store.Record{{"commenter_id": int64(5)}}, nil
		}}
		r := newTestResolver(docs, graph, nil)

		out, err := r.CommentersWhoKnow(context.Background(), "jan@example.com")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(5), out[0].KnowingPerson.ID)
		assert.Equal(t, int64(1), out[0].TargetPerson.ID)
		require.Len(t, out[0].Comments, 1)
		assert.Equal(t, int64(100), out[0].Comments[0].Comment.ID)
		require.NotNil(t, out[0].Comments[0].ForumID)
		assert.Equal(t, int64(30), *out[0].Comments[0].ForumID)
		require.Len(t, out[0].Forums, 1)
		assert.Equal(t, "Group for Tennis", out[0].Forums[0].Title)
	})

	t.Run("ForumFetchIsBatchedAcrossCommenters", func(t *testing.T) {
		shared := &fakeDocs{collections: docs.collections}
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			return []store.Record{{"commenter_id": int64(5)}, {"commenter_id": int64(6)}}, nil
		}}
		r := newTestResolver(shared, graph, nil)

		out, err := r.CommentersWhoKnow(context.Background(), "jan@example.com")
		require.NoError(t, err)
		require.Len(t, out, 2)
		for _, commenter := range out {
			require.Len(t, commenter.Forums, 1)
			assert.Equal(t, int64(30), commenter.Forums[0].ID)
		}
		assert.Equal(t, 1, shared.findCalls[mongodb.CollectionForum],
			"forum documents are fetched once for the whole commenter set")
	})

	t.Run("NoPostsIsEmptySuccess", func(t *testing.T) {
		lonely := &fakeDocs{collections: map[string][]store.Document{
			mongodb.CollectionPerson: {
				personDoc(2, "Maria", "Kovacs", []string{"maria@example.com"}, nil),
			},
		}}
		r := newTestResolver(lonely, nil, nil)

		out, err := r.CommentersWhoKnow(context.Background(), "maria@example.com")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NotNil(t, out, "empty success is a list, not null")
	})
}

func TestSecondDegreeCommenters(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, nil),
			personDoc(5, "Ada", "Ng", []string{"ada@example.com"}, nil),
		},
		mongodb.CollectionPost: {
			{"id": int64(10), "CreatorPersonId": int64(2), "imageFile": "photo10.jpg"},
		},
		mongodb.CollectionComment: {
			{"id": int64(100), "CreatorPersonId": int64(5), "ParentPostId": int64(10), "content": "nice"},
			{"id": int64(101), "CreatorPersonId": int64(5), "ParentPostId": int64(99), "content": "not a liked post"},
			{"id": int64(102), "CreatorPersonId": int64(9), "ParentPostId": int64(10), "content": "not second degree"},
		},
	}}

	graphWith := func(neighbors, liked []store.Record) *fakeGraph {
		return &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			if strings.Contains(query, "LIKES") {
				return liked, nil
			}
			return neighbors, nil
		}}
	}

	t.Run("IntersectionOnly", func(t *testing.T) {
		graph := graphWith(
			[]store.Record{{"second_person_id": int64(5)}},
			[]store.Record{{"liked_post_id": int64(10)}},
		)
		r := newTestResolver(docs, graph, nil)

		out, err := r.SecondDegreeCommenters(context.Background(), "jan@example.com")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(10), out[0].PostID)
		assert.Equal(t, "Ada Ng", out[0].CommenterName)
		assert.Equal(t, "photo10.jpg", out[0].PostContent.Or(""))
		assert.Equal(t, "nice", out[0].CommentContent.Or(""))
	})

	t.Run("DistinctNotFoundConditions", func(t *testing.T) {
		cases := []struct {
			name      string
			neighbors []store.Record
			liked     []store.Record
			entity    string
		}{
			{"NoSecondDegree", nil, nil, "second-degree connections"},
			{"NoLikedPosts", []store.Record{{"second_person_id": int64(5)}}, nil, "liked posts"},
			{"NoComments",
				[]store.Record{{"second_person_id": int64(42)}},
				[]store.Record{{"liked_post_id": int64(10)}},
				"comments from second-degree connections"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				r := newTestResolver(docs, graphWith(tc.neighbors, tc.liked), nil)
				_, err := r.SecondDegreeCommenters(context.Background(), "jan@example.com")
				var notFound *store.NotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, tc.entity, notFound.Entity)
			})
		}
	})
}

func TestGroupsByWorkAndForum(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, nil),
			personDoc(2, "Maria", "Kovacs", []string{"maria@example.com"}, nil),
		},
		mongodb.CollectionForum: {
			{"id": int64(30), "title": "Group for Tennis"},
		},
	}}
	rel := &fakeRel{fetchAll: func(sql string, args []any) ([]store.Row, error) {
		switch {
		case strings.Contains(sql, "WHERE name = ?"):
			if args[0] == "Acme" {
				// Two organizations share the name; both stay in scope.
				return []store.Row{{"id": int64(100)}, {"id": int64(101)}}, nil
			}
			return nil, nil
		case strings.Contains(sql, "id IN ?"):
			return []store.Row{{"id": int64(100), "name": "Acme"}}, nil
		}
		return nil, nil
	}}

	t.Run("ScopedByCompanyName", func(t *testing.T) {
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			assert.Contains(t, query, "company.id IN $company_ids")
			assert.ElementsMatch(t, []int64{100, 101}, params["company_ids"])
			assert.Equal(t, 2010, params["target_year"])
			return []store.Record{
				{"company_id": int64(100), "forum_id": int64(30), "memberIds": []any{int64(1), int64(2)}},
				{"company_id": int64(101), "forum_id": int64(31), "memberIds": []any{int64(1), int64(2)}},
			}, nil
		}}
		r := newTestResolver(docs, graph, rel)

		out, err := r.GroupsByWorkAndForum(context.Background(), 2010, 100, "Acme")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Acme", out[0].CompanyName)
		assert.Equal(t, "Group for Tennis", out[0].ForumTitle)
		require.Len(t, out[0].Members, 2)
		assert.Equal(t, "Unknown Company", out[1].CompanyName, "unresolved lookups degrade to placeholders")
		assert.Equal(t, "Unknown Forum", out[1].ForumTitle)
	})

	t.Run("UnknownCompany", func(t *testing.T) {
		r := newTestResolver(docs, nil, rel)
		_, err := r.GroupsByWorkAndForum(context.Background(), 2010, 100, "No Such Co")
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "organization", notFound.Entity)
	})

	t.Run("NoGroupsIsEmptySuccess", func(t *testing.T) {
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			assert.NotContains(t, query, "$company_ids", "unscoped query carries no company clause")
			return nil, nil
		}}
		r := newTestResolver(docs, graph, rel)

		out, err := r.GroupsByWorkAndForum(context.Background(), 2010, 100, "")
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestActiveCities(t *testing.T) {
	docs := &fakeDocs{
		collections: map[string][]store.Document{
			mongodb.CollectionPerson: {
				personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, store.Document{"LocationCityId": int64(655)}),
				personDoc(2, "Maria", "Kovacs", []string{"maria@example.com"}, store.Document{"LocationCityId": int64(655)}),
				personDoc(3, "Omar", "Haddad", []string{"omar@example.com"}, store.Document{"LocationCityId": int64(700)}),
			},
		},
		aggregate: func(collection string, pipeline []store.Document) []store.Document {
			if collection == mongodb.CollectionPost {
				return []store.Document{
					{"_id": int64(1), "count": int64(3)},
					{"_id": int64(2), "count": int64(9)},
					{"_id": int64(3), "count": int64(2)},
				}
			}
			return []store.Document{
				{"_id": int64(1), "count": int64(2)},
				{"_id": int64(3), "count": int64(1)},
			}
		},
	}
	rel := &fakeRel{fetchAll: func(sql string, args []any) ([]store.Row, error) {
		require.Contains(t, sql, "FROM place")
		return []store.Row{{"id": int64(655), "name": "Warsaw"}}, nil
	}}
	r := newTestResolver(docs, nil, rel)

	t.Run("CombinedActivityThreshold", func(t *testing.T) {
		// Persons 1 (3+2) and 2 (9) reach five actions; person 3 does not.
		out, err := r.ActiveCities(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(655), out[0].CityID)
		assert.Equal(t, "Warsaw", out[0].CityName)
		assert.Equal(t, int64(2), out[0].ActiveUserCount)
	})

	t.Run("MinActiveFiltersCities", func(t *testing.T) {
		out, err := r.ActiveCities(context.Background(), 3)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestMostUsedTagsByCity(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionPerson: {
			personDoc(1, "Jan", "Zakrzewski", []string{"jan@example.com"}, store.Document{"LocationCityId": int64(655)}),
			personDoc(2, "Maria", "Kovacs", []string{"maria@example.com"}, store.Document{"LocationCityId": int64(655)}),
			personDoc(3, "Omar", "Haddad", []string{"omar@example.com"}, nil),
		},
	}}
	rel := &fakeRel{fetchAll: func(sql string, args []any) ([]store.Row, error) {
		if strings.Contains(sql, "FROM place") {
			return []store.Row{{"id": int64(655), "name": "Warsaw"}}, nil
		}
		require.Contains(t, sql, "LEFT JOIN tagclass")
		return []store.Row{
			{"tag_id": int64(7), "tag_name": "Augustine_of_Hippo", "tag_url": "http://dbpedia.org/resource/Augustine_of_Hippo", "class_name": "Person"},
		}, nil
	}}
	graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
		require.Contains(t, query, "HAS_INTEREST")
		assert.ElementsMatch(t, []int64{1, 2}, params["person_ids"], "every city resident is counted")
		assert.Equal(t, 5, params["limit"])
		return []store.Record{
			{"tag_id": int64(7), "usage_count": int64(3)},
			{"tag_id": int64(9), "usage_count": int64(1)},
		}, nil
	}}
	r := newTestResolver(docs, graph, rel)

	t.Run("ResolvedAndPlaceholderTags", func(t *testing.T) {
		out, err := r.MostUsedTagsByCity(context.Background(), "jan@example.com", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(655), out.CityID)
		assert.Equal(t, "Warsaw", out.CityName)
		require.Len(t, out.Tags, 2)
		assert.Equal(t, "Augustine_of_Hippo", out.Tags[0].Name)
		assert.Equal(t, "Person", out.Tags[0].TagClassName.Or(""))
		assert.Equal(t, "Unknown Tag", out.Tags[1].Name, "graph count survives a relational miss")
		assert.Equal(t, int64(1), out.Tags[1].Count)
	})

	t.Run("PersonWithoutCity", func(t *testing.T) {
		_, err := r.MostUsedTagsByCity(context.Background(), "omar@example.com", 5)
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "city of person", notFound.Entity)
	})
}

func TestCommonInterests(t *testing.T) {
	rel := &fakeRel{fetchAll: func(sql string, args []any) ([]store.Row, error) {
		switch {
		case strings.Contains(sql, "WHERE name = ?"):
			if args[0] == "Acme" {
				return []store.Row{{"id": int64(100)}, {"id": int64(101)}}, nil
			}
			return nil, nil
		case strings.Contains(sql, "LEFT JOIN tagclass"):
			return []store.Row{{"tag_id": int64(7), "tag_name": "Augustine_of_Hippo"}}, nil
		}
		return nil, nil
	}}

	t.Run("TopTagsOfActiveMembers", func(t *testing.T) {
		docs := &fakeDocs{aggregate: func(collection string, pipeline []store.Document) []store.Document {
			return []store.Document{{"_id": int64(1)}}
		}}
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			if strings.Contains(query, "STUDY_AT|WORK_AT") {
				assert.ElementsMatch(t, []int64{100, 101}, params["org_ids"], "every same-named organization is in scope")
				return []store.Record{{"person_id": int64(1)}, {"person_id": int64(2)}}, nil
			}
			assert.Equal(t, []int64{1}, params["person_ids"], "only active members count interests")
			assert.Equal(t, 10, params["limit"])
			return []store.Record{{"tag_id": int64(7), "usage_count": int64(2)}}, nil
		}}
		r := newTestResolver(docs, graph, rel)

		out, err := r.CommonInterests(context.Background(), "Acme")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Augustine_of_Hippo", out[0].Name)
		assert.Equal(t, int64(2), out[0].Count)
	})

	t.Run("UnknownOrganization", func(t *testing.T) {
		r := newTestResolver(nil, nil, rel)
		_, err := r.CommonInterests(context.Background(), "No Such Co")
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "organization", notFound.Entity)
	})

	t.Run("NoAffiliatedPeople", func(t *testing.T) {
		graph := &fakeGraph{read: func(string, map[string]any) ([]store.Record, error) {
			return nil, nil
		}}
		r := newTestResolver(nil, graph, rel)
		_, err := r.CommonInterests(context.Background(), "Acme")
		var empty *store.EmptyResultError
		require.ErrorAs(t, err, &empty)
	})

	t.Run("NoActiveMembers", func(t *testing.T) {
		docs := &fakeDocs{aggregate: func(string, []store.Document) []store.Document {
			return nil
		}}
		graph := &fakeGraph{read: func(string, map[string]any) ([]store.Record, error) {
			return []store.Record{{"person_id": int64(1)}}, nil
		}}
		r := newTestResolver(docs, graph, rel)
		_, err := r.CommonInterests(context.Background(), "Acme")
		var empty *store.EmptyResultError
		require.ErrorAs(t, err, &empty)
	})
}

func TestForumsByTagClass(t *testing.T) {
	docs := &fakeDocs{collections: map[string][]store.Document{
		mongodb.CollectionForum: {
			{"id": int64(30), "title": "Group for Tennis", "creationDate": "2010-02-14"},
		},
	}}
	rel := &fakeRel{fetchAll: func(sql string, args []any) ([]store.Row, error) {
		require.Contains(t, sql, "tc.name = ?")
		if args[0] == "Person" {
			return []store.Row{{"id": int64(7)}, {"id": int64(9)}}, nil
		}
		return nil, nil
	}}

	t.Run("CountsAndDegradedRows", func(t *testing.T) {
		graph := &fakeGraph{read: func(query string, params map[string]any) ([]store.Record, error) {
			assert.ElementsMatch(t, []int64{7, 9}, params["tag_ids"])
			assert.Equal(t, int64(2), params["min_members"])
			return []store.Record{
				{"forum_id": int64(30), "interested_members": int64(5)},
				{"forum_id": int64(31), "interested_members": int64(7)},
			}, nil
		}}
		r := newTestResolver(docs, graph, rel)

		out, err := r.ForumsByTagClass(context.Background(), "Person", 2)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(31), out[0].ForumID, "highest member count first")
		assert.False(t, out[0].Title.Present(), "missing forum document keeps the row")
		assert.Equal(t, "Group for Tennis", out[1].Title.Or(""))
	})

	t.Run("UnknownTagClass", func(t *testing.T) {
		r := newTestResolver(docs, nil, rel)
		_, err := r.ForumsByTagClass(context.Background(), "NoSuchClass", 2)
		var notFound *store.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "tag class", notFound.Entity)
	})

	t.Run("NoQualifyingForums", func(t *testing.T) {
		graph := &fakeGraph{read: func(string, map[string]any) ([]store.Record, error) {
			return nil, nil
		}}
		r := newTestResolver(docs, graph, rel)
		out, err := r.ForumsByTagClass(context.Background(), "Person", 2)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}
