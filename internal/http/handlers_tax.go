package http

import (
	"net/http"

	"pnltracker/internal/core"
)

const estimateCacheKey = "current"

func (s *Server) handleTaxEstimate(w http.ResponseWriter, r *http.Request) {
	if result, found := s.estimateCache.Get(estimateCacheKey); found {
		respondJSON(w, http.StatusOK, result)
		return
	}

	result, err := s.tax.Estimate(r.Context(), nil)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.estimateCache.Set(estimateCacheKey, result)
	respondJSON(w, http.StatusOK, result)
}

// handleTaxEstimatePreview runs the estimator with a configuration supplied
// in the request, without persisting it. Never cached.
func (s *Server) handleTaxEstimatePreview(w http.ResponseWriter, r *http.Request) {
	var cfg core.TaxConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	result, err := s.tax.Estimate(r.Context(), &cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTaxConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.tax.GetConfig(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSaveTaxConfig(w http.ResponseWriter, r *http.Request) {
	var cfg core.TaxConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	if err := s.tax.SaveConfig(r.Context(), cfg); err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, cfg)
}
