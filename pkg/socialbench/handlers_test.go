package socialbench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadb/socialbench/pkg/store"
)

func TestRespondResolverError(t *testing.T) {
	a := &App{log: zerolog.Nop()}

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"NotFound", store.NotFound("person", "nobody@example.com"), http.StatusNotFound,
			`{"error":"person not found: \"nobody@example.com\""}`},
		{"EmptyResult", &store.EmptyResultError{Reason: "no active members"}, http.StatusOK, `[]`},
		{"Unavailable", store.Unavailable("graph", errors.New("connection refused")), http.StatusServiceUnavailable,
			`{"error":"graph store unavailable: connection refused"}`},
		{"Wrapped", wrap(store.NotFound("tag class", "NoSuchClass")), http.StatusNotFound,
			`{"error":"tag class not found: \"NoSuchClass\""}`},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, `{"error":"boom"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.respondResolverError(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func wrap(err error) error {
	return fmt.Errorf("fetching: %w", err)
}

func TestHandlerValidation(t *testing.T) {
	// Validation failures never reach the resolver, so a bare App suffices.
	a := &App{log: zerolog.Nop()}

	cases := []struct {
		name    string
		handler http.HandlerFunc
		url     string
	}{
		{"ActiveCitiesMissingMinActive", a.handleActiveCities, "/api/cities/active"},
		{"ActiveCitiesZeroMinActive", a.handleActiveCities, "/api/cities/active?min_active=0"},
		{"ActiveCitiesGarbage", a.handleActiveCities, "/api/cities/active?min_active=lots"},
		{"TagsByCityTopNTooLarge", a.handleTagsByCity, "/api/tags/most-used-by-city/x?top_n=101"},
		{"TagsByCityTopNZero", a.handleTagsByCity, "/api/tags/most-used-by-city/x?top_n=0"},
		{"ForumsByTagClassMissingMinMembers", a.handleForumsByTagClass, "/api/forums/by-tagclass/x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleGroupsValidation(t *testing.T) {
	a := &App{log: zerolog.Nop()}

	router := mux.NewRouter()
	router.HandleFunc("/api/groups/by-work-and-forum/{year}", a.handleGroupsByWorkAndForum)
	for _, url := range []string{
		"/api/groups/by-work-and-forum/abc",
		"/api/groups/by-work-and-forum/1899",
		"/api/groups/by-work-and-forum/2101",
		"/api/groups/by-work-and-forum/2010?limit=0",
		"/api/groups/by-work-and-forum/2010?limit=ten",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "GET %s", url)
	}
}

// pingStore lets health checks observe a broken backend.
type pingStore struct {
	err error
}

func (p *pingStore) Ping(ctx context.Context) error { return p.err }

type healthDocs struct{ pingStore }

func (h *healthDocs) FindOne(ctx context.Context, collection string, filter store.Document) (store.Document, error) {
	return nil, nil
}

func (h *healthDocs) Find(ctx context.Context, collection string, filter, projection store.Document) ([]store.Document, error) {
	return nil, nil
}

func (h *healthDocs) Aggregate(ctx context.Context, collection string, pipeline []store.Document) ([]store.Document, error) {
	return nil, nil
}

func (h *healthDocs) BulkInsert(ctx context.Context, collection string, docs []store.Document) (int, error) {
	return 0, nil
}

func (h *healthDocs) DistinctKeys(ctx context.Context, collection, field string) ([]int64, error) {
	return nil, nil
}

func (h *healthDocs) EnsureIndexes(ctx context.Context) error { return nil }
func (h *healthDocs) Close(ctx context.Context) error         { return nil }

type healthGraph struct{ pingStore }

func (h *healthGraph) Read(ctx context.Context, query string, params map[string]any) ([]store.Record, error) {
	return nil, nil
}

func (h *healthGraph) Write(ctx context.Context, query string, params map[string]any) error {
	return nil
}

func (h *healthGraph) EnsureConstraints(ctx context.Context) error { return nil }
func (h *healthGraph) Close(ctx context.Context) error             { return nil }

type healthRel struct{ pingStore }

func (h *healthRel) Execute(ctx context.Context, sql string, args ...any) error { return nil }

func (h *healthRel) FetchAll(ctx context.Context, sql string, args ...any) ([]store.Row, error) {
	return nil, nil
}

func (h *healthRel) InsertRows(ctx context.Context, table string, rows []store.Row, batchSize int) (int, error) {
	return 0, nil
}

func (h *healthRel) ExistingKeys(ctx context.Context, table string) ([]int64, error) {
	return nil, nil
}

func (h *healthRel) CreateSchema(ctx context.Context) error   { return nil }
func (h *healthRel) AddForeignKeys(ctx context.Context) error { return nil }
func (h *healthRel) Close() error                             { return nil }

func TestHandleHealth(t *testing.T) {
	t.Run("AllStoresUp", func(t *testing.T) {
		a := &App{docs: &healthDocs{}, graph: &healthGraph{}, rel: &healthRel{}, log: zerolog.Nop()}
		rec := httptest.NewRecorder()
		a.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		stores := body["stores"].(map[string]any)
		assert.Equal(t, "ok", stores["document"])
		assert.Equal(t, "ok", stores["graph"])
		assert.Equal(t, "ok", stores["relational"])
	})

	t.Run("DegradedStore", func(t *testing.T) {
		a := &App{
			docs:  &healthDocs{},
			graph: &healthGraph{pingStore{err: errors.New("connection refused")}},
			rel:   &healthRel{},
			log:   zerolog.Nop(),
		}
		rec := httptest.NewRecorder()
		a.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body["status"])
		stores := body["stores"].(map[string]any)
		assert.Equal(t, "ok", stores["document"])
		assert.Equal(t, "connection refused", stores["graph"])
	})
}
