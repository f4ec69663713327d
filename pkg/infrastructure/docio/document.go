// Package docio adapts the PDF text-extraction library to the engine's
// token model. It is the only package that knows which reader is in use.
package docio

import (
	"fmt"

	"github.com/tsawler/tabula"
	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/layout"
)

// Document reads positioned tokens from a PDF, page by page. It implements
// reconcile.TokenSource.
type Document struct {
	path string
	log  *zap.Logger
}

// Open prepares a document for extraction. The file is not touched until
// Pages is called.
func Open(path string, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{path: path, log: log}
}

// Pages extracts the positioned text fragments of every page and maps them
// to layout tokens. Extraction warnings are logged, not fatal.
func (d *Document) Pages() ([][]layout.Token, error) {
	counter := tabula.Open(d.path)
	count, err := counter.PageCount()
	counter.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", d.path, err)
	}

	pages := make([][]layout.Token, 0, count)
	for p := 1; p <= count; p++ {
		fragments, warnings, err := tabula.Open(d.path).Pages(p).Fragments()
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d of %s: %w", p, d.path, err)
		}
		for _, w := range warnings {
			d.log.Warn("document extraction warning",
				zap.Int("page", p),
				zap.String("warning", fmt.Sprintf("%v", w)))
		}

		tokens := make([]layout.Token, 0, len(fragments))
		for _, f := range fragments {
			tokens = append(tokens, layout.Token{
				Text:   f.Text,
				Left:   f.X,
				Bottom: f.Y,
			})
		}
		pages = append(pages, tokens)
	}
	return pages, nil
}
