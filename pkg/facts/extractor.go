// Package facts parses the reconstructed lines of the positional document
// into structured per-handling-unit facts, the ground truth the allocation
// engine and verifier work from.
package facts

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/config"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/layout"
)

// Extractor pulls UnitFacts out of the document region between the
// packing-list section markers.
type Extractor struct {
	sectionStart string
	sectionEnd   string
	log          *zap.Logger
}

// NewExtractor creates an extractor for the configured section markers
func NewExtractor(cfg config.PackingConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		sectionStart: cfg.SectionStart,
		sectionEnd:   cfg.SectionEnd,
		log:          log,
	}
}

// Extract walks the logical lines of one or more pages and returns every
// unit fact found between the section markers, in document order. Lines that
// do not match the expected shape are section headers, footers or free text
// and are skipped without complaint.
func (e *Extractor) Extract(pages ...[]layout.Line) []entities.UnitFact {
	var facts []entities.UnitFact

	for _, lines := range pages {
		inSection := false
		for _, line := range lines {
			if !inSection {
				if strings.Contains(line.Text, e.sectionStart) {
					inSection = true
				}
				continue
			}
			if strings.Contains(line.Text, e.sectionEnd) {
				inSection = false
				continue
			}
			if fact, ok := parseUnitLine(line.Text); ok {
				facts = append(facts, fact)
			} else {
				e.log.Debug("skipping non-fact line", zap.String("text", line.Text))
			}
		}
	}

	e.log.Info("extracted unit facts", zap.Int("count", len(facts)))
	return facts
}

// parseUnitLine validates a candidate line shape-first, token by token, so
// ragged spacing between columns does not matter:
//
//	<10-digit handling unit> <delivery> <product> <description...> <CC> <qty>
//
// The free-text description between the product and the country code is
// discarded.
func parseUnitLine(text string) (entities.UnitFact, bool) {
	tokens := strings.Fields(text)
	if len(tokens) < 5 {
		return entities.UnitFact{}, false
	}

	hu := tokens[0]
	if !isDigits(hu) || len(hu) != 10 {
		return entities.UnitFact{}, false
	}

	country := tokens[len(tokens)-2]
	if !isCountryCode(country) {
		return entities.UnitFact{}, false
	}

	qty, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 64)
	if err != nil || qty < 0 {
		return entities.UnitFact{}, false
	}

	return entities.UnitFact{
		HandlingUnit:    entities.NormalizeHandlingUnit(hu),
		DeliveryNumber:  tokens[1],
		Product:         entities.ProductID(tokens[2]),
		CountryOfOrigin: country,
		Quantity:        entities.Quantity(qty),
	}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
