package domain

// ToolStatus summarises how an analyzer invocation ended.
type ToolStatus string

// Tool statuses.
const (
	// ToolStatusOK means the tool ran and produced a JSON report.
	ToolStatusOK ToolStatus = "ok"

	// ToolStatusError means the tool ran but its output is unusable.
	ToolStatusError ToolStatus = "error"

	// ToolStatusTimeout means the tool hit its wall-clock ceiling.
	ToolStatusTimeout ToolStatus = "timeout"

	// ToolStatusUnavailable means the tool could not be started.
	ToolStatusUnavailable ToolStatus = "unavailable"
)

// ToolResult is the outcome of one analyzer run.
// A ToolResult is always produced, whatever happened to the process;
// Payload is an empty object rather than nil when nothing usable came back.
type ToolResult struct {
	// Tool is the analyzer's name (e.g. "slither", "echidna").
	Tool string

	// Status is the run outcome.
	Status ToolStatus

	// ExitCode is the process exit code, or -1 when the process never exited normally.
	ExitCode int

	// Payload is the decoded JSON report.
	Payload map[string]any

	// Error is a short diagnostic; empty when Status is ok.
	Error string
}

// OK reports whether the tool produced a usable report.
func (r ToolResult) OK() bool {
	return r.Status == ToolStatusOK
}

// AnalysisDocument is the unit of indexing: one identifier and the
// ordered findings produced for it. It lives only until persisted.
type AnalysisDocument struct {
	// ID is derived from the uploaded file's stem or the address prefix.
	ID string

	// Findings are kept in production order: static first, then dynamic.
	Findings []Finding
}

// Chunks renders the document's findings as chunk texts.
func (d AnalysisDocument) Chunks() []string {
	return RenderFindings(d.Findings)
}

// AnalyzeRequest asks for a contract to be analysed.
// Exactly one of (Content/Filename) and Address must be supplied.
type AnalyzeRequest struct {
	// Content is the uploaded source.
	Content []byte

	// Filename is the uploaded source's name.
	Filename string

	// Address is an on-chain contract address to fetch source for.
	Address string

	// ContractName overrides the contract the fuzzer targets.
	ContractName string
}

// HasFile reports whether an uploaded file was supplied.
func (r AnalyzeRequest) HasFile() bool {
	return r.Filename != "" || len(r.Content) > 0
}

// HasAddress reports whether an address was supplied.
func (r AnalyzeRequest) HasAddress() bool {
	return r.Address != ""
}

// AnalysisSummary is the result of an analyze call.
type AnalysisSummary struct {
	// DocID identifies the indexed document.
	DocID string `json:"doc_id"`

	// StaticFindings is the number of static findings indexed.
	StaticFindings int `json:"static_finding_count"`

	// DynamicFindings is the number of dynamic findings indexed.
	DynamicFindings int `json:"dynamic_finding_count"`

	// DynamicError carries the fuzzer diagnostic when dynamic analysis degraded.
	DynamicError string `json:"dynamic_error,omitempty"`

	// DegradedChunks counts findings stored with the zero vector.
	DegradedChunks int `json:"degraded_chunks,omitempty"`
}

// ReportFile is one analyzer report submitted for ingestion.
type ReportFile struct {
	// Filename is the report's name; its stem becomes the document ID.
	Filename string

	// Data is the raw JSON report.
	Data []byte
}

// IngestSummary is the result of an ingest call.
type IngestSummary struct {
	// Files is the number of report files ingested.
	Files int `json:"file_count"`

	// ChunksInserted is the total number of chunks persisted.
	ChunksInserted int `json:"chunks_inserted"`

	// DegradedChunks counts chunks stored with the zero vector.
	DegradedChunks int `json:"degraded_chunks,omitempty"`
}
