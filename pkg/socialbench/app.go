package socialbench

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/maadb/socialbench/pkg/logger"
	"github.com/maadb/socialbench/pkg/resolver"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
	"github.com/maadb/socialbench/pkg/store/neo4j"
	"github.com/maadb/socialbench/pkg/store/postgres"
)

// Config holds the shared configuration for all commands: connection
// settings for the three stores, the server port and the log sink.
type Config struct {
	MongoURI      string
	MongoDatabase string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPass     string
	Neo4jDatabase string

	PostgresDSN string

	ServerPort string
	LogPath    string
}

// App holds the connected stores and the resolver built over them. One App
// serves all commands; each command uses the subset of stores it needs.
type App struct {
	docs     store.DocumentStore
	graph    store.GraphStore
	rel      store.RelationalStore
	resolver *resolver.Resolver
	config   *Config
	log      zerolog.Logger
	logData  *logger.Data
}

// New connects to the three stores and builds the application. Any store
// that cannot be reached fails construction; the commands all need their
// backends up before doing useful work.
func New(ctx context.Context, config *Config) (*App, error) {
	build := logger.New().FromBuffer(os.Stderr)
	if config.LogPath != "" {
		build = build.FromPath(config.LogPath)
	}
	logData, err := build.Make()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	log := logData.Logger

	docs, err := mongodb.New(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("connecting to document store: %w", err)
	}
	log.Info().Str("uri", config.MongoURI).Msg("connected to document store")

	graph, err := neo4j.New(ctx, config.Neo4jURI, config.Neo4jUser, config.Neo4jPass, config.Neo4jDatabase)
	if err != nil {
		_ = docs.Close(ctx)
		return nil, fmt.Errorf("connecting to graph store: %w", err)
	}
	log.Info().Str("uri", config.Neo4jURI).Msg("connected to graph store")

	rel, err := postgres.New(ctx, config.PostgresDSN)
	if err != nil {
		_ = docs.Close(ctx)
		_ = graph.Close(ctx)
		return nil, fmt.Errorf("connecting to relational store: %w", err)
	}
	log.Info().Msg("connected to relational store")

	return &App{
		docs:     docs,
		graph:    graph,
		rel:      rel,
		resolver: resolver.New(docs, graph, rel, log),
		config:   config,
		log:      log,
		logData:  logData,
	}, nil
}

// Close releases the store connections and the log file.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.docs.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.graph.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.rel.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.logData.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Resolver exposes the query operations, mainly for tests.
func (a *App) Resolver() *resolver.Resolver {
	return a.resolver
}

// getEnv returns the environment variable value, or the fallback when it
// is unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
