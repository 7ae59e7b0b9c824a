package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/creditgest/internal/report"
	"github.com/dgallion1/creditgest/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("list reports", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleReportSummary renders a stored report as Markdown, or as HTML when
// ?format=html.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "html" {
		out, err := report.HTML(stored)
		if err != nil {
			s.log.Error("render summary", "id", stored.ID, "error", err)
			jsonError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.Markdown(stored)))
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete report", "id", id, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonError(w, "Report not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) handleDeleteAllReports(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteAll(r.Context())
	if err != nil {
		s.log.Error("delete all reports", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.log.Info("deleted all reports", "count", n)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedAll": true})
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (report.Stored, bool) {
	id := chi.URLParam(r, "id")
	stored, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "Report not found", http.StatusNotFound)
		return report.Stored{}, false
	}
	if err != nil {
		s.log.Error("get report", "id", id, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return report.Stored{}, false
	}
	return stored, true
}
