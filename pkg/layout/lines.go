// Package layout reconstructs ordered logical text lines from positioned
// tokens. It is a pure function over {text, x, y} so the document-reading
// library behind it stays swappable.
package layout

import (
	"sort"
	"strings"
)

// Token is one positioned piece of text from the document reader. Left and
// Bottom are the coordinates of its bounding box origin.
type Token struct {
	Text   string
	Left   float64
	Bottom float64
}

// Line is an ordered group of tokens sharing a visual row, joined into a
// single text string by increasing horizontal position.
type Line struct {
	Tokens []Token
	Text   string

	// Bottom is the vertical position of the first token assigned to the
	// line, used as the clustering reference.
	Bottom float64
}

// DefaultLineTolerance is the vertical clustering tolerance in layout units
const DefaultLineTolerance = 1.5

// Reconstruct clusters tokens into logical lines in top-to-bottom reading
// order. Tokens are sorted by descending vertical position, then walked: a
// token starts a new line when its vertical distance from the first token of
// the line-in-progress exceeds the tolerance. Finished lines are re-sorted
// left to right and their texts joined with single spaces.
//
// The fixed tolerance is a heuristic; tokens straddling the boundary may be
// mis-clustered. That is accepted, never fatal.
func Reconstruct(tokens []Token, tolerance float64) []Line {
	if len(tokens) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}

	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Bottom != sorted[j].Bottom {
			return sorted[i].Bottom > sorted[j].Bottom
		}
		return sorted[i].Left < sorted[j].Left
	})

	var lines []Line
	var current []Token

	for _, tok := range sorted {
		if len(current) == 0 {
			current = append(current, tok)
			continue
		}
		// Distance is measured against the first token of the line, not a
		// running average, so the reference never drifts downwards.
		if abs(tok.Bottom-current[0].Bottom) <= tolerance {
			current = append(current, tok)
			continue
		}
		lines = append(lines, finishLine(current, current[0].Bottom))
		current = []Token{tok}
	}
	if len(current) > 0 {
		lines = append(lines, finishLine(current, current[0].Bottom))
	}

	return lines
}

// finishLine orders a completed cluster left to right and assembles its text
func finishLine(tokens []Token, bottom float64) Line {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Left < tokens[j].Left
	})

	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tok.Text)
	}

	return Line{
		Tokens: tokens,
		Text:   sb.String(),
		Bottom: bottom,
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
