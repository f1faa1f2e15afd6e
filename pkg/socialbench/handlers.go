package socialbench

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/maadb/socialbench/pkg/store"
)

const (
	defaultGroupLimit = 100
	defaultTopN       = 10
)

func (a *App) handlePostsByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	posts, err := a.resolver.PostsByEmail(r.Context(), email)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (a *App) handleForumsByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	forums, err := a.resolver.ForumsOfPerson(r.Context(), email)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, forums)
}

func (a *App) handleCommentersByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	commenters, err := a.resolver.CommentersWhoKnow(r.Context(), email)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, commenters)
}

func (a *App) handleGroupsByWorkAndForum(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1900 || year > 2100 {
		respondError(w, http.StatusBadRequest, "Invalid target year")
		return
	}
	limit := defaultGroupLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}
	company := r.URL.Query().Get("company")

	groups, err := a.resolver.GroupsByWorkAndForum(r.Context(), year, limit, company)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (a *App) handleSecondDegreeCommenters(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	comments, err := a.resolver.SecondDegreeCommenters(r.Context(), email)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

func (a *App) handleActiveCities(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("min_active")
	minActive, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || minActive < 1 {
		respondError(w, http.StatusBadRequest, "min_active must be a positive integer")
		return
	}
	cities, err := a.resolver.ActiveCities(r.Context(), minActive)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cities)
}

func (a *App) handleTagsByCity(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	topN := defaultTopN
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		var err error
		topN, err = strconv.Atoi(raw)
		if err != nil || topN < 1 || topN > 100 {
			respondError(w, http.StatusBadRequest, "top_n must be between 1 and 100")
			return
		}
	}
	tags, err := a.resolver.MostUsedTagsByCity(r.Context(), email, topN)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (a *App) handleCommonInterests(w http.ResponseWriter, r *http.Request) {
	organization := mux.Vars(r)["organization"]
	tags, err := a.resolver.CommonInterests(r.Context(), organization)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (a *App) handleForumsByTagClass(w http.ResponseWriter, r *http.Request) {
	tagClass := mux.Vars(r)["tagClass"]
	raw := r.URL.Query().Get("min_members")
	minMembers, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || minMembers < 1 {
		respondError(w, http.StatusBadRequest, "min_members must be a positive integer")
		return
	}
	forums, err := a.resolver.ForumsByTagClass(r.Context(), tagClass, minMembers)
	if err != nil {
		a.respondResolverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, forums)
}

// handleHealth reports liveness and per-store connectivity.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stores := map[string]string{}
	healthy := true
	checks := []struct {
		name string
		ping func() error
	}{
		{"document", func() error { return a.docs.Ping(ctx) }},
		{"graph", func() error { return a.graph.Ping(ctx) }},
		{"relational", func() error { return a.rel.Ping(ctx) }},
	}
	for _, check := range checks {
		if err := check.ping(); err != nil {
			stores[check.name] = err.Error()
			healthy = false
		} else {
			stores[check.name] = "ok"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	respondJSON(w, status, map[string]any{
		"status": state,
		"stores": stores,
		"time":   time.Now().Unix(),
	})
}

// respondResolverError maps the resolver's error taxonomy onto HTTP
// statuses. An unknown identity is a 404, a resolved identity with zero
// rows is a 200 with an empty list, and an unreachable backend is a 503.
func (a *App) respondResolverError(w http.ResponseWriter, err error) {
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, notFound.Error())
		return
	}
	var empty *store.EmptyResultError
	if errors.As(err, &empty) {
		respondJSON(w, http.StatusOK, []any{})
		return
	}
	var unavailable *store.StoreUnavailableError
	if errors.As(err, &unavailable) {
		respondError(w, http.StatusServiceUnavailable, unavailable.Error())
		return
	}
	a.log.Error().Err(err).Msg("query failed")
	respondError(w, http.StatusInternalServerError, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
