package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/config"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/infrastructure/docio"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/reconcile"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "veridis",
		Short: "Reconcile a supplier manifest against its positional packing document",
		Long: `Veridis rewrites a supplier flat-file manifest so that every detail row
refers to exactly one handling unit, with quantities and values consistent
with the per-unit counts of the positional packing document, then verifies
and self-repairs quantity conservation.`,
		SilenceUsage: true,
	}

	root.AddCommand(newReconcileCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newReconcileCmd() *cobra.Command {
	var (
		manifestPath string
		documentPath string
		outputPath   string
		reportPath   string
		configPath   string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Split aggregated manifest rows per handling unit and verify conservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg := config.Default()
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			report, err := reconcile.Run(docio.Open(documentPath, logger), reconcile.Options{
				ManifestPath: manifestPath,
				OutputPath:   outputPath,
				ReportPath:   reportPath,
				Config:       cfg,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			fmt.Print(report.RenderText())
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to the flat-file manifest (required)")
	cmd.Flags().StringVar(&documentPath, "document", "", "Path to the positional packing document (required)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Path for the rewritten manifest (required)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Path for the verification report (optional)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (optional)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	cmd.MarkFlagRequired("manifest")
	cmd.MarkFlagRequired("document")
	cmd.MarkFlagRequired("output")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("veridis %s\n", version)
		},
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
