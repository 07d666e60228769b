package movie

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// Fixed column order and human-readable headers of the CSV export.
var csvHeader = []string{
	"ID",
	"Titre",
	"Description",
	"Date de sortie",
	"Réalisateur",
	"Date de création",
	"Dernière modification",
}

// GenerateCSV serializes movies deterministically. An empty list yields the
// header row only. Quoting follows RFC 4180 via encoding/csv.
func GenerateCSV(movies []Movie) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, m := range movies {
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.Title,
			m.Description,
			m.ReleaseDate.Format("2006-01-02"),
			m.Director,
			m.CreatedAt.UTC().Format(time.RFC3339),
			m.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
