package movie

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSV(t *testing.T) {
	t.Run("EmptyCatalogStillHasHeader", func(t *testing.T) {
		out, err := GenerateCSV(nil)

		require.NoError(t, err)
		assert.Equal(t, "ID,Titre,Description,Date de sortie,Réalisateur,Date de création,Dernière modification\n", string(out))
	})

	t.Run("OneLinePerMovie", func(t *testing.T) {
		created := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
		movies := []Movie{
			{
				ID:          1,
				Title:       "Le Samouraï",
				Description: "Un tueur à gages solitaire est traqué",
				ReleaseDate: time.Date(1967, 10, 25, 0, 0, 0, 0, time.UTC),
				Director:    "Jean-Pierre Melville",
				CreatedAt:   created,
				UpdatedAt:   created,
			},
			{
				ID:          2,
				Title:       "La Haine",
				Description: "Vingt-quatre heures dans la vie de trois amis",
				ReleaseDate: time.Date(1995, 5, 31, 0, 0, 0, 0, time.UTC),
				Director:    "Mathieu Kassovitz",
				CreatedAt:   created,
				UpdatedAt:   created.Add(time.Hour),
			},
			{
				ID:          3,
				Title:       "Diva",
				Description: "Un jeune postier parisien enregistre une diva",
				ReleaseDate: time.Date(1981, 3, 11, 0, 0, 0, 0, time.UTC),
				Director:    "Jean-Jacques Beineix",
				CreatedAt:   created,
				UpdatedAt:   created,
			},
		}

		out, err := GenerateCSV(movies)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "ID,Titre,Description,Date de sortie,Réalisateur,Date de création,Dernière modification", lines[0])
		assert.Equal(t, "1,Le Samouraï,Un tueur à gages solitaire est traqué,1967-10-25,Jean-Pierre Melville,2024-03-10T14:30:00Z,2024-03-10T14:30:00Z", lines[1])
		assert.Equal(t, "2,La Haine,Vingt-quatre heures dans la vie de trois amis,1995-05-31,Mathieu Kassovitz,2024-03-10T14:30:00Z,2024-03-10T15:30:00Z", lines[2])
		assert.Equal(t, "3,Diva,Un jeune postier parisien enregistre une diva,1981-03-11,Jean-Jacques Beineix,2024-03-10T14:30:00Z,2024-03-10T14:30:00Z", lines[3])
	})

	t.Run("QuotesFieldsContainingCommas", func(t *testing.T) {
		movies := []Movie{
			{
				ID:          5,
				Title:       "Jeux interdits",
				Description: "Paulette, cinq ans, perd ses parents",
				ReleaseDate: time.Date(1952, 5, 9, 0, 0, 0, 0, time.UTC),
				Director:    "René Clément",
			},
		}

		out, err := GenerateCSV(movies)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"Paulette, cinq ans, perd ses parents"`)
	})

	t.Run("Deterministic", func(t *testing.T) {
		movies := []Movie{
			{ID: 9, Title: "Playtime", Description: "Monsieur Hulot se perd dans un Paris moderne",
				ReleaseDate: time.Date(1967, 12, 16, 0, 0, 0, 0, time.UTC), Director: "Jacques Tati"},
		}

		first, err := GenerateCSV(movies)
		require.NoError(t, err)
		second, err := GenerateCSV(movies)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
