package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pnltracker/internal/core"
	"pnltracker/internal/importer"
)

// maxStatementBytes bounds uploaded CSV statements.
const maxStatementBytes = 5 << 20

// handleImportPreview parses a raw CSV body into review-ready rows with
// suggested categories. Nothing is written; the client commits the reviewed
// rows through handleImportCommit.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year parameter"})
			return
		}
		year = parsed
	}

	categories, err := s.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxStatementBytes)
	result, err := importer.ParseStatement(body, year, categories)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.Rows == nil {
		result.Rows = []importer.Row{}
	}
	respondJSON(w, http.StatusOK, result)
}

type importCommitRequest struct {
	Transactions []core.Transaction `json:"transactions"`
}

type importCommitResponse struct {
	Imported int `json:"imported"`
}

// handleImportCommit inserts the reviewed rows as one atomic batch.
func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var req importCommitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Transactions) == 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "no transactions to import"})
		return
	}
	for i := range req.Transactions {
		req.Transactions[i].ID = ""
	}

	stored, err := s.transactions.ImportBatch(r.Context(), req.Transactions)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, importCommitResponse{Imported: len(stored)})
}
