package socialbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		cmd, config, err := Parse([]string{"run"})
		require.NoError(t, err)
		assert.IsType(t, &RunCommand{}, cmd)
		assert.Equal(t, "8080", config.ServerPort)
		assert.Equal(t, "mongodb://localhost:27017", config.MongoURI)
		assert.Equal(t, "bolt://localhost:7687", config.Neo4jURI)
	})

	t.Run("PortFlagWins", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		_, config, err := Parse([]string{"-port=8090", "run"})
		require.NoError(t, err)
		assert.Equal(t, "8090", config.ServerPort)
	})

	t.Run("PortFromEnv", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		_, config, err := Parse([]string{"run"})
		require.NoError(t, err)
		assert.Equal(t, "9999", config.ServerPort)
	})

	t.Run("Migrate", func(t *testing.T) {
		cmd, _, err := Parse([]string{"migrate"})
		require.NoError(t, err)
		assert.IsType(t, &MigrateCommand{}, cmd)
	})

	t.Run("LoadDefaults", func(t *testing.T) {
		cmd, _, err := Parse([]string{"load"})
		require.NoError(t, err)
		load, ok := cmd.(*LoadCommand)
		require.True(t, ok)
		assert.Equal(t, "data", load.DataDir)
		assert.Zero(t, load.Workers)
		assert.Empty(t, load.Only)
	})

	t.Run("LoadFlags", func(t *testing.T) {
		cmd, _, err := Parse([]string{"-data", "/data/sf1", "-workers", "8", "-only", "person, post,", "load"})
		require.NoError(t, err)
		load, ok := cmd.(*LoadCommand)
		require.True(t, ok)
		assert.Equal(t, "/data/sf1", load.DataDir)
		assert.Equal(t, 8, load.Workers)
		assert.Equal(t, []string{"person", "post"}, load.Only, "blank entries are dropped")
	})

	t.Run("EnvironmentConnections", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
		t.Setenv("NEO4J_USER", "reader")
		t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/sb")
		_, config, err := Parse([]string{"run"})
		require.NoError(t, err)
		assert.Equal(t, "mongodb://mongo:27017", config.MongoURI)
		assert.Equal(t, "reader", config.Neo4jUser)
		assert.Equal(t, "postgres://u:p@db:5432/sb", config.PostgresDSN)
	})

	t.Run("MissingSubcommand", func(t *testing.T) {
		_, _, err := Parse([]string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subcommand required")
	})

	t.Run("UnknownSubcommand", func(t *testing.T) {
		_, _, err := Parse([]string{"serve"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown command")
	})
}
