package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// AskRequest is the /ask request body.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskResponse is the /ask response body.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}

	req := domain.AnalyzeRequest{
		Address:      r.FormValue("address"),
		ContractName: r.FormValue("contract_name"),
	}
	if file, header, err := r.FormFile("file"); err == nil {
		content, err := readPart(file)
		if err != nil {
			writeError(w, err)
			return
		}
		req.Content = content
		req.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	summary, err := s.audit.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	reports := make([]domain.ReportFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, h.Filename, err))
			return
		}
		data, err := readPart(f)
		if err != nil {
			writeError(w, err)
			return
		}
		reports = append(reports, domain.ReportFile{Filename: h.Filename, Data: data})
	}

	summary, err := s.audit.Ingest(r.Context(), reports)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: request body: %w", domain.ErrInvalidInput, err))
		return
	}

	qc, err := s.ask.Ask(r.Context(), body.Question, body.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Debug("answered from %d chunks (%s retrieval)", len(qc.Chunks), qc.Mode)
	writeJSON(w, http.StatusOK, AskResponse{Answer: qc.Answer})
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.settings.MaxUploadBytes); err != nil {
		return fmt.Errorf("%w: multipart form: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

func readPart(f multipart.File) ([]byte, error) {
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", domain.ErrInvalidInput, err)
	}
	return data, nil
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAnalysisTool):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSourceFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%v", err)
	} else {
		logger.Warn("%v", err)
	}
	writeJSON(w, status, ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response: %v", err)
	}
}
