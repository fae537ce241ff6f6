package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

var tuiTopK int

// runProgram runs a Bubbletea model to completion. Replaced in tests.
var runProgram = func(model tea.Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(model, opts...).Run()
	return err
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions interactively in a terminal UI",
	Long: `Opens an interactive terminal UI for asking questions about indexed findings.
Each answer is shown with the findings it was generated from and the
retrieval tier that supplied them.

Controls:
  enter      Ask the typed question
  ↑/k, ↓/j   Move between retrieved findings
  pgup/pgdn  Scroll the answer
  n, esc     New question (esc on an empty screen quits)
  ?          Keybindings
  ctrl+c     Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", domain.DefaultTopK, "number of findings to retrieve per question")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	rt, _, err := startRuntime(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer rt.close()

	app, err := tui.NewApp(tui.NewPorts(rt.Ask), tuiTopK)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
