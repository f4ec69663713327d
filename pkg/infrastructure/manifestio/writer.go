package manifestio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
)

// Serialize renders one row back to its flat-file form. Untouched rows keep
// their verbatim source line; modified or synthesized rows are re-emitted
// with every field quoted, the way the upstream system writes them.
func Serialize(row *entities.ManifestRow) string {
	if raw := row.Raw(); raw != "" || row.Kind == entities.RecordPassthrough {
		return raw
	}

	quoted := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// Render assembles the whole manifest, one record per line with a trailing
// newline.
func Render(rows []entities.ManifestRow) string {
	var sb strings.Builder
	for i := range rows {
		sb.WriteString(Serialize(&rows[i]))
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteFile writes the manifest to path in full
func WriteFile(path string, rows []entities.ManifestRow) error {
	if err := os.WriteFile(path, []byte(Render(rows)), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// ReplaceAtomic writes the manifest to a temporary file in the target
// directory and renames it over path in one filesystem operation, so a crash
// mid-write leaves the previous output intact.
func ReplaceAtomic(path string, rows []entities.ManifestRow) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".veridis-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(Render(rows)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp manifest: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace manifest %s: %w", path, err)
	}
	return nil
}
