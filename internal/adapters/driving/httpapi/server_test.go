package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

func newTestServer(t *testing.T, audit *mockAuditService, ask *mockAskService) http.Handler {
	t.Helper()
	settings := domain.DefaultAppSettings().Server
	srv, err := NewServer(audit, ask, settings)
	require.NoError(t, err)
	return srv.Handler()
}

type part struct {
	field, filename, content string
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, w.WriteField(p.field, p.content))
			continue
		}
		fw, err := w.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, &mockAskService{}, domain.ServerSettings{})
	assert.ErrorIs(t, err, ErrMissingAuditService)

	_, err = NewServer(&mockAuditService{}, nil, domain.ServerSettings{})
	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &mockAuditService{}, &mockAskService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze_File(t *testing.T) {
	audit := &mockAuditService{summary: &domain.AnalysisSummary{DocID: "Vault", StaticFindings: 2, DynamicFindings: 1}}
	h := newTestServer(t, audit, &mockAskService{})

	body, ctype := multipartBody(t,
		part{field: "file", filename: "Vault.sol", content: "contract Vault {}"},
		part{field: "contract_name", content: "Vault"},
	)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"doc_id":"Vault","static_finding_count":2,"dynamic_finding_count":1}`, rec.Body.String())
	assert.Equal(t, "Vault.sol", audit.analyzeReq.Filename)
	assert.Equal(t, "contract Vault {}", string(audit.analyzeReq.Content))
	assert.Equal(t, "Vault", audit.analyzeReq.ContractName)
	assert.Empty(t, audit.analyzeReq.Address)
}

func TestAnalyze_Address(t *testing.T) {
	audit := &mockAuditService{summary: &domain.AnalysisSummary{DocID: "0xdAC1"}}
	h := newTestServer(t, audit, &mockAskService{})

	body, ctype := multipartBody(t, part{field: "address", content: "0xdAC17F958D2ee523a2206206994597C13D831ec7"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", audit.analyzeReq.Address)
	assert.False(t, audit.analyzeReq.HasFile())
}

func TestAnalyze_NotMultipart(t *testing.T) {
	h := newTestServer(t, &mockAuditService{}, &mockAskService{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"analysis tool", domain.NewStageError(domain.PhaseStatic, "slither", domain.ErrAnalysisTool, errors.New("exit status 1")), http.StatusUnprocessableEntity},
		{"source fetch", domain.NewStageError(domain.PhaseAcquire, "etherscan", domain.ErrSourceFetch, errors.New("NOTOK")), http.StatusBadGateway},
		{"storage", domain.NewStageError(domain.PhaseIndex, "", domain.ErrStorage, errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &mockAuditService{err: tt.err}, &mockAskService{})

			body, ctype := multipartBody(t, part{field: "address", content: "0x0"})
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.err.Error(), resp.Detail)
		})
	}
}

func TestIngest(t *testing.T) {
	audit := &mockAuditService{ingest: &domain.IngestSummary{Files: 2, ChunksInserted: 7}}
	h := newTestServer(t, audit, &mockAskService{})

	body, ctype := multipartBody(t,
		part{field: "files", filename: "a.json", content: `{"results":{"detectors":[]}}`},
		part{field: "files", filename: "b.json", content: `{"fails":[]}`},
	)
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"file_count":2,"chunks_inserted":7}`, rec.Body.String())
	require.Len(t, audit.reports, 2)
	assert.Equal(t, "a.json", audit.reports[0].Filename)
	assert.Equal(t, `{"fails":[]}`, string(audit.reports[1].Data))
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	audit := &mockAuditService{err: domain.NewStageError(domain.PhaseParse, "", nil, domain.ErrUnsupportedFormat)}
	h := newTestServer(t, audit, &mockAskService{})

	body, ctype := multipartBody(t, part{field: "files", filename: "x.json", content: `{"foo":1}`})
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk(t *testing.T) {
	ask := &mockAskService{answer: "Use a reentrancy guard."}
	h := newTestServer(t, &mockAuditService{}, ask)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"How do I fix reentrancy?","top_k":3}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Use a reentrancy guard."}`, rec.Body.String())
	assert.Equal(t, "How do I fix reentrancy?", ask.question)
	assert.Equal(t, 3, ask.topK)
}

func TestAsk_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		h := newTestServer(t, &mockAuditService{}, &mockAskService{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generation failure", func(t *testing.T) {
		err := domain.NewStageError(domain.PhaseGenerate, "gemini", domain.ErrGeneration, errors.New("quota"))
		h := newTestServer(t, &mockAuditService{}, &mockAskService{err: err})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"q"}`)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &mockAuditService{}, &mockAskService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &mockAuditService{}, &mockAskService{})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
		req.Header.Set("Origin", "http://localhost:3001")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		wrapped := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		assert.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
