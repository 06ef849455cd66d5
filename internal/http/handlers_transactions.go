package http

import (
	"net/http"
	"strconv"
	"strings"

	"pnltracker/internal/core"
	"pnltracker/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (storage.TransactionFilter, bool) {
	var filter storage.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		filter.Type = core.TransactionType(v)
		if err := filter.Type.Validate(); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return storage.TransactionFilter{}, false
		}
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := core.ParseDate(v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return storage.TransactionFilter{}, false
		}
		filter.From = from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := core.ParseDate(v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return storage.TransactionFilter{}, false
		}
		filter.To = to
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid page parameter"})
			return storage.TransactionFilter{}, false
		}
		filter.Page = page
	}
	return filter, true
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	tx.ID = ""

	stored, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	tx.ID = r.PathValue("id")

	updated, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}
