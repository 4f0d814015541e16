package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alnah/go-pptgen"
)

// ContentTypePPTX is the media type of generated presentations.
const ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Response headers reporting what the assembler did.
const (
	HeaderGenerated = "X-Slides-Generated"
	HeaderSkipped   = "X-Slides-Skipped"
)

// Error messages. The template message is the one the web client shows.
const (
	msgTemplateMissing = "Template PowerPoint tidak ditemukan di folder server"
	msgTemplateInvalid = "Template PowerPoint tidak dapat dibuka"
	msgInvalidRequest  = "invalid request body"
	msgBodyTooLarge    = "request body too large"
	msgBusy            = "request canceled while waiting for a worker"
	msgInternal        = "failed to generate presentation"
)

// statusClientClosedRequest marks requests whose client went away before a
// response was written. Nothing reaches the client; it keeps access logs honest.
const statusClientClosedRequest = 499

//go:embed static/status.html
var static embed.FS

var statusTemplate = template.Must(template.ParseFS(static, "static/status.html"))

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleStatus).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/generate-ppt", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/generate-ppt", s.handlePreflight).Methods(http.MethodOptions)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	var h http.Handler = r
	h = corsMiddleware(s.cfg.AllowedOrigins)(h)
	h = recoverMiddleware(s.logger)(h)
	h = logMiddleware(s.logger)(h)
	h = requestIDMiddleware(h)
	return h
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.status.Execute(&buf, map[string]any{
		"Version":        s.cfg.Version,
		"OutputFilename": s.cfg.OutputFilename,
		"LayoutPolicy":   s.cfg.LayoutPolicy,
		"Sections":       s.cfg.Sections,
	})
	if err != nil {
		s.logger.Error("rendering status page", zap.Error(err))
		http.Error(w, "status page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// handlePreflight acknowledges CORS preflight; corsMiddleware sets the headers.
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger.With(zap.String("request_id", RequestID(ctx)))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	req, err := pptgen.DecodeRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}

	if err := s.pool.Acquire(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, msgBusy, nil)
		return
	}
	defer s.pool.Release()

	result, err := s.asm.AssembleFile(ctx, s.cfg.TemplatePath, req.Slides)
	if err != nil {
		switch {
		case errors.Is(err, pptgen.ErrTemplateNotFound):
			log.Error("template not found", zap.String("path", s.cfg.TemplatePath), zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgTemplateMissing, nil)
		case errors.Is(err, pptgen.ErrTemplateInvalid):
			log.Error("template unreadable", zap.String("path", s.cfg.TemplatePath), zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgTemplateInvalid, nil)
		case errors.Is(err, context.Canceled):
			log.Info("client went away", zap.Error(err))
			w.WriteHeader(statusClientClosedRequest)
		default:
			log.Error("generation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgInternal, nil)
		}
		return
	}

	log.Info("presentation generated",
		zap.Int("requested", len(req.Slides)),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped()),
		zap.Int("bytes", len(result.Document)))

	h := w.Header()
	h.Set("Content-Type", ContentTypePPTX)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.cfg.OutputFilename}))
	h.Set("Content-Length", strconv.Itoa(len(result.Document)))
	h.Set(HeaderGenerated, strconv.Itoa(result.Generated))
	h.Set(HeaderSkipped, strconv.Itoa(result.Skipped()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Document)
}

// errorBody is the JSON error response.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError sends a JSON error. Pass cause only when it is safe to show
// to the client.
func writeError(w http.ResponseWriter, status int, msg string, cause error) {
	body := errorBody{Error: msg}
	if cause != nil {
		body.Detail = cause.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
