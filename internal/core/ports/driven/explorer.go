package driven

import "context"

// SourceExplorer fetches verified contract source from a blockchain explorer.
type SourceExplorer interface {
	// Name returns the explorer name reported in errors.
	Name() string

	// GetSourceCode returns the source of the contract at address.
	// A missing credential, a transport failure or a non-success
	// response status are all errors; the caller classifies them.
	GetSourceCode(ctx context.Context, address string) (string, error)
}
