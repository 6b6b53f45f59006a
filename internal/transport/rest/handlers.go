package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"TOSAnalyzer/internal/domain"
	"TOSAnalyzer/internal/ports"
	"TOSAnalyzer/internal/usecase"
)

// Client-facing messages for rejected input.
const (
	msgEmptyText = "Empty text"
	msgNoImage   = "No image provided"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

type extractTextRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

type extractURLRequest struct {
	URL string `json:"url"`
}

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil && !s.readiness.Ready() {
		s.writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready"})
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Text)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		s.writeError(w, http.StatusBadRequest, msgEmptyText)
		return
	case err != nil:
		s.logger.Error("analyze failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	var req extractTextRequest
	if !s.decode(w, r, &req) {
		return
	}

	text, err := s.extractor.ExtractImage(r.Context(), req.Image, req.MimeType)
	switch {
	case errors.Is(err, usecase.ErrNoImage):
		s.writeError(w, http.StatusBadRequest, msgNoImage)
		return
	case errors.Is(err, usecase.ErrInvalidImage),
		errors.Is(err, ports.ErrUnsupportedImage):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("ocr failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleExtractURL(w http.ResponseWriter, r *http.Request) {
	var req extractURLRequest
	if !s.decode(w, r, &req) {
		return
	}

	text, err := s.extractor.ExtractURL(r.Context(), req.URL)
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ports.ErrBlockedAddress):
		s.logger.Warn("page fetch refused", "error", err)
		s.writeError(w, http.StatusBadRequest, "url not allowed")
		return
	case err != nil:
		s.logger.Warn("page fetch failed", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

// decode reads a size-limited JSON body and answers 400/413 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	s.writeError(w, http.StatusBadRequest, "invalid JSON body")
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
