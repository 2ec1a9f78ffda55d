package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"promptbatch/internal/app"
	"promptbatch/internal/promptcsv"
	"promptbatch/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	MaxUploadBytes int64
	TrustedProxies *util.TrustedProxies
}

// Server exposes the prompt generation endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	maxUploadBytes int64
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
		trustedProxies: cfg.TrustedProxies,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("promptbatch", s.trustedProxies, util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/generate/", s.handleGenerate)
	s.mux.HandleFunc("/batch/", s.handleBatch)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /generate/{provider}
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.providerFromPath(r.URL.Path, "/generate/")
	if !ok {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req promptRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	response, err := s.app.Generate(r.Context(), provider, req.Prompt)
	if err != nil {
		// Provider failures are logged with full detail and reported
		// to the caller as a generic error.
		util.LoggerFromContext(r.Context()).Error("single prompt generation failed",
			"provider", provider,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to generate response")
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: req.Prompt, Response: response})
}

// /batch/{provider}
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.providerFromPath(r.URL.Path, "/batch/")
	if !ok {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()

	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/csv" {
		writeError(w, http.StatusBadRequest, "invalid file format, only CSV files are accepted")
		return
	}
	prompts, err := promptcsv.Parse(file)
	if err != nil {
		if errors.Is(err, promptcsv.ErrNoPromptColumn) {
			writeError(w, http.StatusBadRequest, "csv file must contain a prompt column")
			return
		}
		writeError(w, http.StatusBadRequest, "unable to parse csv file")
		return
	}

	rows, err := s.app.ProcessBatch(provider, prompts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process batch")
		return
	}
	path, err := s.app.SaveArtifact(provider, rows)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("saving batch artifact failed",
			"provider", provider,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to save results")
		return
	}

	// The response is served from the artifact on disk, so concurrent
	// batches for the same provider race on its content: last writer wins.
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+app.ArtifactName(provider)+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) providerFromPath(path, prefix string) (string, bool) {
	name := strings.TrimPrefix(path, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	if !s.app.HasProvider(name) {
		return "", false
	}
	return name, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeFor(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCodeFor(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "invalid json body":
		return "PROMPT_INVALID_REQUEST"
	case message == "failed to generate response":
		return "PROMPT_GENERATION_FAILED"
	case message == "invalid form data":
		return "BATCH_INVALID_UPLOAD_FORM"
	case strings.Contains(message, "file is required"):
		return "BATCH_FILE_REQUIRED"
	case strings.Contains(message, "only csv files"):
		return "BATCH_INVALID_CONTENT_TYPE"
	case message == "unable to parse csv file":
		return "BATCH_INVALID_CSV"
	case strings.Contains(message, "prompt column"):
		return "BATCH_MISSING_PROMPT_COLUMN"
	case message == "failed to process batch":
		return "BATCH_PROCESSING_FAILED"
	case message == "failed to save results":
		return "BATCH_SAVE_FAILED"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case message == "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "REQUEST_ERROR"
	case http.StatusNotFound:
		return "SYSTEM_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}
