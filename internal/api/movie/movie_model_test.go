package movie

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseDateUnmarshal(t *testing.T) {
	t.Run("DateOnly", func(t *testing.T) {
		var req CreateMovieRequest
		body := []byte(`{"title": "Inception", "description": "Un voleur infiltre les rêves", "releaseDate": "2010-07-16", "director": "Christopher Nolan"}`)

		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), req.ReleaseDate.Time)
		assert.NoError(t, req.Validate())
	})

	t.Run("RFC3339", func(t *testing.T) {
		var req CreateMovieRequest
		body := []byte(`{"title": "Inception", "description": "Un voleur infiltre les rêves", "releaseDate": "2010-07-16T00:00:00Z", "director": "Christopher Nolan"}`)

		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), req.ReleaseDate.Time)
	})

	t.Run("DateOnlyInPatch", func(t *testing.T) {
		var params UpdateMovieParams
		body := []byte(`{"releaseDate": "1995-05-31"}`)

		require.NoError(t, json.Unmarshal(body, &params))
		require.NotNil(t, params.ReleaseDate)
		assert.Equal(t, time.Date(1995, 5, 31, 0, 0, 0, 0, time.UTC), params.ReleaseDate.Time)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		var req CreateMovieRequest
		body := []byte(`{"title": "Inception", "description": "Un voleur infiltre les rêves", "releaseDate": "16/07/2010", "director": "Christopher Nolan"}`)

		assert.Error(t, json.Unmarshal(body, &req))
	})

	t.Run("NullLeavesZero", func(t *testing.T) {
		var req CreateMovieRequest
		body := []byte(`{"title": "Inception", "description": "Un voleur infiltre les rêves", "releaseDate": null, "director": "Christopher Nolan"}`)

		require.NoError(t, json.Unmarshal(body, &req))
		assert.True(t, req.ReleaseDate.IsZero())
		assert.Error(t, req.Validate())
	})
}
