package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze [file.sol]", analyzeCmd.Use)
}

func TestAnalyzeCmd_HasFlags(t *testing.T) {
	assert.NotNil(t, analyzeCmd.Flags().Lookup("address"))
	assert.NotNil(t, analyzeCmd.Flags().Lookup("contract"))
	assert.NotNil(t, analyzeCmd.Flags().Lookup("json"))
}

func TestAnalyzeCmd_RequiresSource(t *testing.T) {
	env := setupTestEnv(t)

	err := env.run("analyze")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--address")
	assert.Empty(t, env.built)
}

func TestAnalyzeCmd_File(t *testing.T) {
	env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "Vault.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Vault {}"), 0600))

	require.NoError(t, env.run("analyze", path, "--contract", "Vault"))

	assert.Equal(t, "Vault.sol", env.audit.analyzeReq.Filename)
	assert.Equal(t, "contract Vault {}", string(env.audit.analyzeReq.Content))
	assert.Equal(t, "Vault", env.audit.analyzeReq.ContractName)
	assert.Contains(t, env.out.String(), "Indexed Vault")
	assert.Contains(t, env.out.String(), "Static findings:  3")
	assert.Equal(t, 1, env.closed)
}

func TestAnalyzeCmd_Address(t *testing.T) {
	env := setupTestEnv(t)
	addr := "0x1234567890abcdef1234567890abcdef12345678"

	require.NoError(t, env.run("analyze", "--address", addr))

	assert.Equal(t, addr, env.audit.analyzeReq.Address)
	assert.False(t, env.audit.analyzeReq.HasFile())
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	env := setupTestEnv(t)
	env.audit.analyzeResp.DynamicError = "fuzzer timed out"

	require.NoError(t, env.run("analyze", "--address", "0x1234567890abcdef1234567890abcdef12345678", "--json"))

	var got domain.AnalysisSummary
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, "Vault", got.DocID)
	assert.Equal(t, "fuzzer timed out", got.DynamicError)
}

func TestAnalyzeCmd_ServiceError(t *testing.T) {
	env := setupTestEnv(t)
	env.audit.err = domain.NewStageError(domain.PhaseStatic, "slither", domain.ErrAnalysisTool, nil)

	err := env.run("analyze", "--address", "0x1234567890abcdef1234567890abcdef12345678")

	assert.ErrorIs(t, err, domain.ErrAnalysisTool)
	assert.Equal(t, 1, env.closed)
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	env := setupTestEnv(t)

	err := env.run("analyze", filepath.Join(t.TempDir(), "missing.sol"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read source")
}

func TestAnalyzeCmd_ReportsDegradedChunks(t *testing.T) {
	env := setupTestEnv(t)
	env.audit.analyzeResp.DegradedChunks = 2
	path := filepath.Join(t.TempDir(), "Vault.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Vault {}"), 0600))

	require.NoError(t, env.run("analyze", path))

	assert.Contains(t, env.out.String(), "Not embedded:     2")
}
