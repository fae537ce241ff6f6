package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func TestSourceAcquirer_File(t *testing.T) {
	root := t.TempDir()
	a := NewSourceAcquirer(nil, root)

	src, err := a.Acquire(context.Background(), domain.AnalyzeRequest{
		Content:  []byte("contract Vault {}"),
		Filename: "Vault.sol",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, "contract Vault {}", string(data))
	assert.Equal(t, "Vault", src.DocID)
	assert.Equal(t, "Vault", src.ContractName)
	assert.Equal(t, src.Dir, filepath.Dir(src.Path))

	require.NoError(t, src.Cleanup())
	require.NoError(t, src.Cleanup())
	assertEmptyDir(t, root)
}

func TestSourceAcquirer_FileExplicitContract(t *testing.T) {
	src, err := NewSourceAcquirer(nil, t.TempDir()).Acquire(context.Background(), domain.AnalyzeRequest{
		Content:      []byte("x"),
		Filename:     "Vault.sol",
		ContractName: "VaultTest",
	})
	require.NoError(t, err)
	defer src.Cleanup()

	assert.Equal(t, "VaultTest", src.ContractName)
	assert.Equal(t, "Vault", src.DocID)
}

func TestSourceAcquirer_FileNameStripsDirectories(t *testing.T) {
	src, err := NewSourceAcquirer(nil, t.TempDir()).Acquire(context.Background(), domain.AnalyzeRequest{
		Content:  []byte("x"),
		Filename: "../../etc/Evil.sol",
	})
	require.NoError(t, err)
	defer src.Cleanup()

	assert.Equal(t, filepath.Join(src.Dir, "Evil.sol"), src.Path)
}

func TestSourceAcquirer_Address(t *testing.T) {
	explorer := &mockExplorer{source: "pragma solidity ^0.8.0;"}
	src, err := NewSourceAcquirer(explorer, t.TempDir()).Acquire(context.Background(),
		domain.AnalyzeRequest{Address: testAddress})
	require.NoError(t, err)
	defer src.Cleanup()

	assert.Equal(t, 1, explorer.calls)
	assert.Equal(t, "0x1234", src.DocID)
	assert.Equal(t, "0x1234.sol", filepath.Base(src.Path))
	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, "pragma solidity ^0.8.0;", string(data))
}

func TestSourceAcquirer_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  domain.AnalyzeRequest
	}{
		{"neither", domain.AnalyzeRequest{}},
		{"both", domain.AnalyzeRequest{Content: []byte("x"), Filename: "a.sol", Address: testAddress}},
		{"content without name", domain.AnalyzeRequest{Content: []byte("x")}},
		{"short address", domain.AnalyzeRequest{Address: "0x1234"}},
		{"not hex", domain.AnalyzeRequest{Address: "0xZZ34567890abcdef1234567890abcdef12345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			explorer := &mockExplorer{source: "x"}

			_, err := NewSourceAcquirer(explorer, root).Acquire(context.Background(), tt.req)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, explorer.calls)
			assertEmptyDir(t, root)
		})
	}
}

func TestSourceAcquirer_ExplorerFailure(t *testing.T) {
	root := t.TempDir()
	cause := errors.New("NOTOK")
	explorer := &mockExplorer{err: cause}

	_, err := NewSourceAcquirer(explorer, root).Acquire(context.Background(), domain.AnalyzeRequest{Address: testAddress})

	assert.ErrorIs(t, err, domain.ErrSourceFetch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "etherscan")
	assertEmptyDir(t, root)
}

func TestSourceAcquirer_NoExplorer(t *testing.T) {
	_, err := NewSourceAcquirer(nil, t.TempDir()).Acquire(context.Background(),
		domain.AnalyzeRequest{Address: testAddress})

	assert.ErrorIs(t, err, domain.ErrSourceFetch)
}

func TestAcquiredSource_CleanupNil(t *testing.T) {
	var src *AcquiredSource
	assert.NoError(t, src.Cleanup())
}
