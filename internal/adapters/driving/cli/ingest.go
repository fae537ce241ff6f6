package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/watch"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

var (
	ingestWatchDir string
	ingestDebounce time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [report.json...]",
	Short: "Index pre-computed analyzer reports",
	Long: `Indexes static-analyzer or fuzzer JSON reports. Either every report in
the batch is accepted or none is indexed.

With --watch, reports written to the directory are ingested as they
arrive, one at a time, until interrupted.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestWatchDir, "watch", "w", "", "directory to watch for new reports")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", watch.DefaultDebounce, "quiet period before a changed report is ingested")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestWatchDir == "" {
		return errors.New("at least one report or --watch is required")
	}

	reports := make([]domain.ReportFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
		reports = append(reports, domain.ReportFile{Filename: filepath.Base(path), Data: data})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, _, err := startRuntime(ctx, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	if len(reports) > 0 {
		summary, err := rt.Audit.Ingest(ctx, reports)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Indexed %d chunks from %d reports\n", summary.ChunksInserted, summary.Files)
		if summary.DegradedChunks > 0 {
			cmd.Printf("  %d chunks stored without embeddings\n", summary.DegradedChunks)
		}
	}

	if ingestWatchDir == "" {
		return nil
	}

	results, err := watch.NewWatcher(ingestWatchDir, rt.Audit, ingestDebounce).Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for reports (Ctrl+C to stop)\n", ingestWatchDir)
	for res := range results {
		if res.Err != nil {
			cmd.PrintErrf("%s: %v\n", filepath.Base(res.Path), res.Err)
			continue
		}
		cmd.Printf("%s: indexed %d chunks\n", filepath.Base(res.Path), res.Summary.ChunksInserted)
	}
	return nil
}
