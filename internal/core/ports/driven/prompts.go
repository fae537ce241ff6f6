package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)
}

// Well-known prompt names used throughout the application.
const (
	// PromptAsk is the retrieval-augmented answer template.
	// It expects two %s placeholders: the assembled context, then the question.
	PromptAsk = "ask"
)

// DefaultAskPrompt is the built-in PromptAsk template.
const DefaultAskPrompt = `You are a blockchain security audit expert. Answer the user's question using the context below, and recommend fixes for any vulnerabilities involved.
### Context
%s
### Question
%s
### Answer
`
