package http

import (
	"net/http"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/query"
)

func (s *Server) handleLedgerStatus(w http.ResponseWriter, r *http.Request, sess *session) {
	status := struct {
		Loading bool   `json:"loading"`
		Error   string `json:"error,omitempty"`
		Records int    `json:"records"`
	}{
		Loading: sess.cache.Loading(),
		Records: len(sess.cache.Current()),
	}
	if err := sess.cache.Err(); err != nil {
		status.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, analytics.Summarize(sess.cache.Current()))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, analytics.ByCategory(sess.cache.Current()))
}

func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, analytics.ExpenseBreakdown(sess.cache.Current()))
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, analytics.MonthlySeries(sess.cache.Current()))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, sess *session) {
	snapshot := sess.cache.Current()
	filtered := query.Apply(snapshot, criteriaFromRequest(r))

	writeJSON(w, http.StatusOK, struct {
		Transactions any      `json:"transactions"`
		Matched      int      `json:"matched"`
		Total        int      `json:"total"`
		Categories   []string `json:"categories"`
	}{
		Transactions: filtered,
		Matched:      len(filtered),
		Total:        len(snapshot),
		Categories:   query.Categories(snapshot),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, sess *session) {
	owner := r.Header.Get("X-Owner-ID")
	fields, err := parseTransactionRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.gateway.Create(r.Context(), owner, fields); err != nil {
		writeError(w, err)
		return
	}
	// The record becomes visible through the next snapshot delivery, not
	// through this response.
	writeJSON(w, http.StatusAccepted, statusBody{Status: "accepted"})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, sess *session) {
	fields, err := parseTransactionRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.gateway.Update(r.Context(), r.PathValue("id"), fields); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusBody{Status: "accepted"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := s.gateway.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *session) {
	filtered := query.Apply(sess.cache.Current(), criteriaFromRequest(r))

	format := r.URL.Query().Get("format")
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case "", "csv":
		format = "csv"
		contentType = "text/csv"
		payload, err = export.ToCSV(filtered)
	case "json":
		contentType = "application/json"
		payload, err = export.ToJSON(filtered)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "format must be csv or json"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	filename := export.Filename(s.appName, format, time.Now())
	log.FromContext(r.Context()).Info("Export generated",
		"format", format,
		"records", len(filtered),
		"filename", filename)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func criteriaFromRequest(r *http.Request) query.Criteria {
	q := r.URL.Query()
	return query.Criteria{
		Search:   q.Get("search"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
}
