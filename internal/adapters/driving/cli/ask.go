package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

var (
	askTopK        int
	askShowContext bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a security question about indexed findings",
	Long: `Retrieves the findings most similar to the question and asks the
configured language model to answer from them. When no finding is similar
enough, recently indexed findings are used instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of findings to retrieve")
	askCmd.Flags().BoolVar(&askShowContext, "context", false, "print the retrieved findings")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer and context as JSON")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Mode     string   `json:"retrieval_mode"`
	Context  []string `json:"context"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	rt, _, err := startRuntime(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer rt.close()

	qc, err := rt.Ask.Ask(cmd.Context(), question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(askOutput{
			Question: qc.Question,
			Answer:   qc.Answer,
			Mode:     string(qc.Mode),
			Context:  qc.Chunks,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	st := newAnswerStyles(cmd.OutOrStdout())
	if askShowContext {
		cmd.Println(st.heading.Render(fmt.Sprintf("Context (%s, %d findings)", qc.Mode, len(qc.Chunks))))
		for i, chunk := range qc.Chunks {
			cmd.Println(st.muted.Render(fmt.Sprintf("[%d] %s", i+1, chunk)))
		}
		cmd.Println()
	}
	cmd.Println(st.heading.Render("Answer"))
	cmd.Println(qc.Answer)
	return nil
}

type answerStyles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
}

// newAnswerStyles returns colour styles for terminals and plain styles
// otherwise, so piped output carries no escape codes.
func newAnswerStyles(w io.Writer) answerStyles {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return answerStyles{heading: lipgloss.NewStyle(), muted: lipgloss.NewStyle()}
	}
	return answerStyles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}
