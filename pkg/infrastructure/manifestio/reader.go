// Package manifestio reads and writes the supplier flat-file manifest: one
// quoted, comma-separated record per line, with blank lines and
// legend-prefixed preamble lines preserved byte-identical.
package manifestio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
)

// ReadFile loads the manifest, classifying each line. Blank lines and lines
// starting with the legend marker become passthrough rows; everything else
// is parsed as a quoted comma-separated record ("" escapes a quote inside a
// quoted field). A missing file or invalid UTF-8 aborts the run; nothing
// else does.
func ReadFile(path, legendMarker string) ([]entities.ManifestRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("manifest %s is not valid UTF-8", path)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}

	var rows []entities.ManifestRow
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		rows = append(rows, parseLine(line, legendMarker))
	}
	return rows, nil
}

// parseLine classifies one manifest line
func parseLine(line, legendMarker string) entities.ManifestRow {
	if strings.TrimSpace(line) == "" {
		return entities.NewPassthroughRow(line)
	}
	if legendMarker != "" && strings.HasPrefix(line, legendMarker) {
		return entities.NewPassthroughRow(line)
	}

	fields, err := splitRecord(line)
	if err != nil {
		// Not a parseable record; carry it through untouched.
		return entities.NewPassthroughRow(line)
	}
	return entities.NewManifestRow(fields, line)
}

// splitRecord parses a single quoted comma-separated record
func splitRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}
