package reconcile

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/allocation"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/config"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/facts"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/infrastructure/manifestio"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/inventory"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/layout"
)

// TokenSource yields the positioned tokens of the positional document, one
// slice per page. Implemented by the document-reading adapter; kept as an
// interface so the engine never depends on a particular reader library.
type TokenSource interface {
	Pages() ([][]layout.Token, error)
}

// Options configures one reconciliation run
type Options struct {
	// ManifestPath is the supplier flat-file manifest (required)
	ManifestPath string
	// OutputPath receives the rewritten manifest (required)
	OutputPath string
	// ReportPath receives the verification report; empty skips the file
	ReportPath string

	Config config.Config
	Logger *zap.Logger
}

// Run executes the whole pipeline: reconstruct lines from the positional
// document, extract the ground truth, allocate the manifest, verify, repair
// once, and report. Only missing or unreadable inputs return an error;
// data-shape anomalies degrade to best-effort plus report.
func Run(src TokenSource, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	pages, err := src.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to read positional document: %w", err)
	}

	pageLines := make([][]layout.Line, len(pages))
	for i, tokens := range pages {
		pageLines[i] = layout.Reconstruct(tokens, cfg.Layout.LineTolerance)
	}
	log.Debug("reconstructed lines", zap.Int("pages", len(pageLines)))

	header := facts.ExtractHeader(pageLines...)
	unitFacts := facts.NewExtractor(cfg.Packing, log).Extract(pageLines...)
	inv := inventory.NewFromFacts(unitFacts)

	rows, err := manifestio.ReadFile(opts.ManifestPath, cfg.Manifest.LegendMarker)
	if err != nil {
		return nil, err
	}

	engine := allocation.NewEngine(inv, log)
	result := engine.ProcessAll(rows)

	if err := manifestio.WriteFile(opts.OutputPath, result.Rows); err != nil {
		return nil, err
	}

	verifier := NewVerifier(unitFacts, inv, log)

	// Re-read what was actually written; the verifier must judge the file
	// dependents will consume, not the in-memory rows.
	written, err := manifestio.ReadFile(opts.OutputPath, cfg.Manifest.LegendMarker)
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	if mismatches := verifier.Mismatches(written); len(mismatches) > 0 {
		repaired, performed := verifier.Rebalance(written, mismatches)
		if len(performed) > 0 {
			if err := manifestio.ReplaceAtomic(opts.OutputPath, repaired); err != nil {
				return nil, err
			}
			transfers = performed
			written, err = manifestio.ReadFile(opts.OutputPath, cfg.Manifest.LegendMarker)
			if err != nil {
				return nil, err
			}
		}
	}

	report := verifier.BuildReport(written, header, transfers, result.Shortfalls)

	if opts.ReportPath != "" {
		if err := os.WriteFile(opts.ReportPath, []byte(report.RenderText()), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write report %s: %w", opts.ReportPath, err)
		}
	}

	log.Info("reconciliation finished",
		zap.Int("pairs", len(report.Pairs)),
		zap.Int("transfers", len(report.Transfers)),
		zap.Bool("ok", report.OK()))
	return report, nil
}
