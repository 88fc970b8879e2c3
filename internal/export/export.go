// Package export serializes a layout snapshot to the JSON document an
// operator downloads. Building an export reads the snapshot and nothing
// else; it never touches stored state.
package export

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seatforge/seatforge/backend-go/internal/layout"
)

// Document is the downloadable chart snapshot.
type Document struct {
	Sections   []layout.Section `json:"sections"`
	Scale      float64          `json:"scale"`
	ExportDate string           `json:"exportDate"`
	TotalSeats int              `json:"totalSeats"`
}

// Build assembles the export document for a snapshot, stamped with the
// current time in ISO-8601.
func Build(l layout.Layout) Document {
	return Document{
		Sections:   l.Sections,
		Scale:      l.Scale,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		TotalSeats: l.TotalSeats(),
	}
}

// WriteDownload writes the document to the response as a JSON file
// attachment named after the chart.
func WriteDownload(w http.ResponseWriter, name string, doc Document) error {
	name = sanitizeFilename(name)
	if name == "" {
		name = "seating-chart"
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name))
	_, err = w.Write(data)
	return err
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
