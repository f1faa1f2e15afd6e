package socialbench

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Run starts the HTTP server exposing the query API.
//
// Routes:
//
//	GET /api/posts/by-email/{email}                       posts created by the person
//	GET /api/forums/by-email/{email}                      forum memberships with member counts
//	GET /api/commenters/by-email/{email}                  people who know the person and commented on their posts
//	GET /api/groups/by-work-and-forum/{year}              colleague groups sharing a forum; ?limit=, ?company=
//	GET /api/analysis/second-degree-commenters/{email}    second-degree connections commenting on liked posts
//	GET /api/cities/active                                cities by active-user count; ?min_active=
//	GET /api/tags/most-used-by-city/{email}               top interest tags in the person's city; ?top_n=
//	GET /api/analysis/common-interests/{organization}     top tags among an organization's active members
//	GET /api/forums/by-tagclass/{tagClass}                forums with members interested in a tag class; ?min_members=
//	GET /api/health                                       liveness plus per-store connectivity
//
// The server shuts down gracefully on context cancellation, draining
// in-flight requests for up to five seconds.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	router := mux.NewRouter()
	router.Use(a.requestLogging)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/posts/by-email/{email}", a.handlePostsByEmail).Methods("GET")
	api.HandleFunc("/forums/by-email/{email}", a.handleForumsByEmail).Methods("GET")
	api.HandleFunc("/commenters/by-email/{email}", a.handleCommentersByEmail).Methods("GET")
	api.HandleFunc("/groups/by-work-and-forum/{year}", a.handleGroupsByWorkAndForum).Methods("GET")
	api.HandleFunc("/analysis/second-degree-commenters/{email}", a.handleSecondDegreeCommenters).Methods("GET")
	api.HandleFunc("/cities/active", a.handleActiveCities).Methods("GET")
	api.HandleFunc("/tags/most-used-by-city/{email}", a.handleTagsByCity).Methods("GET")
	api.HandleFunc("/analysis/common-interests/{organization}", a.handleCommonInterests).Methods("GET")
	api.HandleFunc("/forums/by-tagclass/{tagClass}", a.handleForumsByTagClass).Methods("GET")

	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// requestLogging tags each request with an id and logs its outcome.
func (a *App) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
