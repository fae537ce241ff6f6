package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the security question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of findings to retrieve as context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer        string   `json:"answer"`
	RetrievalMode string   `json:"retrieval_mode"`
	Context       []string `json:"context,omitempty"`
}

// AnalyzeAddressInput is the input schema for the analyze_address tool.
type AnalyzeAddressInput struct {
	Address      string `json:"address" jsonschema:"the 0x-prefixed contract address"`
	ContractName string `json:"contract_name,omitempty" jsonschema:"contract for the fuzzer to target"`
}

// IngestReportInput is the input schema for the ingest_report tool.
type IngestReportInput struct {
	Filename string `json:"filename" jsonschema:"report name; its stem becomes the document id"`
	Report   string `json:"report" jsonschema:"the slither or echidna JSON report"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a smart-contract security question from indexed audit findings",
	}, s.handleAsk)

	if s.ports.Audit == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_address",
		Description: "Fetch a verified contract by address, run static and dynamic analysis, and index the findings",
	}, s.handleAnalyzeAddress)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_report",
		Description: "Index a pre-computed slither or echidna JSON report",
	}, s.handleIngestReport)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	qc, err := s.ports.Ask.Ask(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:        qc.Answer,
		RetrievalMode: qc.Mode.String(),
		Context:       qc.Chunks,
	}, nil
}

// handleAnalyzeAddress handles the analyze_address tool invocation.
func (s *Server) handleAnalyzeAddress(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeAddressInput,
) (*mcp.CallToolResult, domain.AnalysisSummary, error) {
	summary, err := s.ports.Audit.Analyze(ctx, domain.AnalyzeRequest{
		Address:      input.Address,
		ContractName: input.ContractName,
	})
	if err != nil {
		return nil, domain.AnalysisSummary{}, err
	}
	return nil, *summary, nil
}

// handleIngestReport handles the ingest_report tool invocation.
func (s *Server) handleIngestReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestReportInput,
) (*mcp.CallToolResult, domain.IngestSummary, error) {
	summary, err := s.ports.Audit.Ingest(ctx, []domain.ReportFile{{
		Filename: input.Filename,
		Data:     []byte(input.Report),
	}})
	if err != nil {
		return nil, domain.IngestSummary{}, err
	}
	return nil, *summary, nil
}
