package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
)

// ToCSV renders the records in the fixed column order, one row each,
// preserving the order of the input. An empty set yields an empty string.
func ToCSV(applications []models.Application) (string, error) {
	if len(applications) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, application := range applications {
		row := TabularRow(application)
		record := make([]string, len(Columns))
		for i, column := range Columns {
			record[i] = row[column]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
