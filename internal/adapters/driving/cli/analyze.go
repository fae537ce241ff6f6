package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

var (
	analyzeAddress  string
	analyzeContract string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.sol]",
	Short: "Analyse a contract and index its findings",
	Long: `Runs the static analyzer and the fuzzer against a Solidity contract and
indexes the findings for later questions.

Give either a local source file or --address to fetch verified source from
the block explorer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeAddress, "address", "a", "", "deployed contract address (0x + 40 hex)")
	analyzeCmd.Flags().StringVarP(&analyzeContract, "contract", "c", "", "contract name for the fuzzer (default: file stem)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output summary as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	req := domain.AnalyzeRequest{
		Address:      analyzeAddress,
		ContractName: analyzeContract,
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}
		req.Content = content
		req.Filename = filepath.Base(args[0])
	}
	if !req.HasFile() && !req.HasAddress() {
		return errors.New("a source file or --address is required")
	}

	rt, _, err := startRuntime(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer rt.close()

	summary, err := rt.Audit.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Indexed %s\n", summary.DocID)
	cmd.Printf("  Static findings:  %d\n", summary.StaticFindings)
	cmd.Printf("  Dynamic findings: %d\n", summary.DynamicFindings)
	if summary.DegradedChunks > 0 {
		cmd.Printf("  Not embedded:     %d\n", summary.DegradedChunks)
	}
	if summary.DynamicError != "" {
		cmd.Printf("  Fuzzer: %s\n", summary.DynamicError)
	}
	return nil
}
