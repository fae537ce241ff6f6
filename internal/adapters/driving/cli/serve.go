package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API exposing the audit and question-answering pipelines.

Endpoints:
  POST /analyze  multipart: file (.sol) or address, optional contract_name
  POST /ingest   multipart: one or more files (analyzer JSON reports)
  POST /ask      JSON: {"question": "...", "top_k": 5}
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, settings, err := startRuntime(ctx, func(s *domain.AppSettings) {
		if serveAddr != "" {
			s.Server.ListenAddr = serveAddr
		}
	})
	if err != nil {
		return err
	}
	defer rt.close()

	server, err := httpapi.NewServer(rt.Audit, rt.Ask, settings.Server)
	if err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on %s\n", settings.Server.ListenAddr)
	return server.Run(ctx)
}
