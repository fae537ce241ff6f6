package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// addressDocIDLen is how much of an address names its document ("0x" plus four hex digits).
const addressDocIDLen = 6

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AcquiredSource is a contract source written to a private temporary
// directory. Callers must call Cleanup when done with it.
type AcquiredSource struct {
	// Dir is the temporary directory holding the source.
	Dir string

	// Path is the source file inside Dir.
	Path string

	// DocID names the analysis document built from this source.
	DocID string

	// ContractName is the contract the fuzzer targets.
	ContractName string
}

// Cleanup removes the temporary directory. It is safe to call more than once.
func (s *AcquiredSource) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}

// SourceAcquirer materialises contract source on disk, either from an
// upload or from a block explorer.
type SourceAcquirer struct {
	explorer driven.SourceExplorer
	tempRoot string
}

// NewSourceAcquirer creates an acquirer. explorer may be nil, in which case
// address lookups fail with domain.ErrSourceFetch. tempRoot is the parent
// for temporary directories; empty means the OS default.
func NewSourceAcquirer(explorer driven.SourceExplorer, tempRoot string) *SourceAcquirer {
	return &SourceAcquirer{explorer: explorer, tempRoot: tempRoot}
}

// Validate checks that req names exactly one source.
// It makes no external calls.
func Validate(req domain.AnalyzeRequest) error {
	switch {
	case req.HasFile() && req.HasAddress():
		return fmt.Errorf("%w: supply either a source file or an address, not both", domain.ErrInvalidInput)
	case !req.HasFile() && !req.HasAddress():
		return fmt.Errorf("%w: a source file or an address is required", domain.ErrInvalidInput)
	case req.HasFile() && sanitizeFilename(req.Filename) == "":
		return fmt.Errorf("%w: source file has no usable name", domain.ErrInvalidInput)
	case req.HasAddress() && !addressPattern.MatchString(req.Address):
		return fmt.Errorf("%w: malformed address %q", domain.ErrInvalidInput, req.Address)
	}
	return nil
}

// Acquire writes the requested source into a new temporary directory.
// On error nothing is left on disk.
func (a *SourceAcquirer) Acquire(ctx context.Context, req domain.AnalyzeRequest) (*AcquiredSource, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var (
		filename string
		content  []byte
	)
	if req.HasFile() {
		filename = sanitizeFilename(req.Filename)
		content = req.Content
	} else {
		source, err := a.fetch(ctx, req.Address)
		if err != nil {
			return nil, err
		}
		filename = req.Address[:addressDocIDLen] + ".sol"
		content = []byte(source)
	}

	dir, err := os.MkdirTemp(a.tempRoot, "chainaudit-")
	if err != nil {
		return nil, domain.NewStageError(domain.PhaseAcquire, "", nil, fmt.Errorf("create temp dir: %w", err))
	}
	src := &AcquiredSource{
		Dir:          dir,
		Path:         filepath.Join(dir, filename),
		DocID:        fileStem(filename),
		ContractName: ContractName(filename, req.ContractName),
	}

	if err := os.WriteFile(src.Path, content, 0o600); err != nil {
		_ = src.Cleanup()
		return nil, domain.NewStageError(domain.PhaseAcquire, "", nil, fmt.Errorf("write source: %w", err))
	}

	logger.Debug("Acquired %s (%d bytes) in %s", filename, len(content), dir)
	return src, nil
}

func (a *SourceAcquirer) fetch(ctx context.Context, address string) (string, error) {
	if a.explorer == nil {
		return "", domain.NewStageError(domain.PhaseAcquire, "", domain.ErrSourceFetch,
			errors.New("no explorer configured"))
	}

	source, err := a.explorer.GetSourceCode(ctx, address)
	if err != nil {
		return "", domain.NewStageError(domain.PhaseAcquire, a.explorer.Name(), domain.ErrSourceFetch, err)
	}
	return source, nil
}

// sanitizeFilename strips any directory components from an uploaded name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
