package database

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The favorites table relies on the schema for two guarantees the service
// layer never re-checks: deleting a user or a movie must remove its favorite
// rows, and a (user, movie) pair can only be favorited once. Pin both in the
// embedded migration so a schema change cannot silently drop them.
func TestInitMigrationSchema(t *testing.T) {
	raw, err := migrationFS.ReadFile("migrations/000001_init.up.sql")
	require.NoError(t, err)
	schema := string(raw)

	t.Run("FavoritesCascadeOnUserDelete", func(t *testing.T) {
		assert.Regexp(t,
			regexp.MustCompile(`user_id\s+BIGINT NOT NULL REFERENCES users \(id\) ON DELETE CASCADE`),
			schema)
	})

	t.Run("FavoritesCascadeOnMovieDelete", func(t *testing.T) {
		assert.Regexp(t,
			regexp.MustCompile(`movie_id\s+BIGINT NOT NULL REFERENCES movies \(id\) ON DELETE CASCADE`),
			schema)
	})

	t.Run("FavoritePairIsUnique", func(t *testing.T) {
		assert.Contains(t, schema, "CONSTRAINT favorites_user_movie_unique UNIQUE (user_id, movie_id)")
	})

	t.Run("UserMailIsUnique", func(t *testing.T) {
		assert.Regexp(t,
			regexp.MustCompile(`mail\s+VARCHAR\(255\) NOT NULL UNIQUE`),
			schema)
	})
}
