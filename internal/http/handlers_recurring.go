package http

import (
	"net/http"
	"time"

	"pnltracker/internal/core"
	"pnltracker/internal/storage"
)

const seriesCacheKey = "all"

type createSeriesRequest struct {
	Date       core.Date            `json:"date"`
	Name       string               `json:"name"`
	Type       core.TransactionType `json:"type"`
	Amount     core.Money           `json:"amount"`
	CategoryID string               `json:"category_id"`
	Notes      string               `json:"notes"`
	Frequency  core.Frequency       `json:"frequency"`
	EndDate    core.Date            `json:"end_date"`
}

type createSeriesResponse struct {
	RecurringID  string             `json:"recurring_id"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	base := core.Transaction{
		Date:       req.Date,
		Name:       req.Name,
		Type:       req.Type,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	}

	instances, err := s.recurring.CreateSeries(r.Context(), base, req.Frequency, req.EndDate, core.Today(time.Now()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, createSeriesResponse{
		RecurringID:  instances[0].RecurringID,
		Count:        len(instances),
		Transactions: instances,
	})
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	if summaries, found := s.seriesCache.Get(seriesCacheKey); found {
		respondJSON(w, http.StatusOK, summaries)
		return
	}

	summaries, err := s.recurring.ListSeries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []storage.SeriesSummary{}
	}

	s.seriesCache.Set(seriesCacheKey, summaries)
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	instances, err := s.recurring.GetSeries(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, instances)
}

type updateSeriesRequest struct {
	Name       *string               `json:"name"`
	Type       *core.TransactionType `json:"type"`
	Amount     *core.Money           `json:"amount"`
	CategoryID *string               `json:"category_id"`
	Notes      *string               `json:"notes"`
}

func (s *Server) handleUpdateSeries(w http.ResponseWriter, r *http.Request) {
	var req updateSeriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := s.recurring.UpdateSeries(r.Context(), r.PathValue("id"), storage.SeriesUpdate{
		Name:       req.Name,
		Type:       req.Type,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

type updateEndDateRequest struct {
	EndDate core.Date `json:"end_date"`
}

func (s *Server) handleUpdateEndDate(w http.ResponseWriter, r *http.Request) {
	var req updateEndDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, added, err := s.recurring.UpdateEndDate(r.Context(), r.PathValue("id"), req.EndDate, core.Today(time.Now()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted, "added": added})
}

func (s *Server) handleEndSeries(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.recurring.EndToday(r.Context(), r.PathValue("id"), core.Today(time.Now()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (s *Server) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.recurring.DeleteSeries(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
