package services

import (
	"context"

	"pnltracker/internal/core"
	"pnltracker/internal/storage"
	"pnltracker/internal/tax"
)

// TaxService runs the estimator over the full ledger.
type TaxService struct {
	store  TaxStore
	tables tax.Tables
}

func NewTaxService(store TaxStore, tables tax.Tables) *TaxService {
	return &TaxService{store: store, tables: tables}
}

// Estimate loads every transaction and category and runs the estimator. A
// non-nil override is used instead of the stored configuration, so clients
// can preview "what if" scenarios without saving them.
func (s *TaxService) Estimate(ctx context.Context, override *core.TaxConfig) (tax.Result, error) {
	cfg, err := s.config(ctx, override)
	if err != nil {
		return tax.Result{}, err
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return tax.Result{}, err
	}

	transactions, err := s.allTransactions(ctx)
	if err != nil {
		return tax.Result{}, err
	}

	return tax.Estimate(transactions, categories, cfg, s.tables)
}

func (s *TaxService) GetConfig(ctx context.Context) (core.TaxConfig, error) {
	return s.store.GetTaxConfig(ctx)
}

func (s *TaxService) SaveConfig(ctx context.Context, cfg core.TaxConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.store.SaveTaxConfig(ctx, cfg)
}

func (s *TaxService) config(ctx context.Context, override *core.TaxConfig) (core.TaxConfig, error) {
	if override != nil {
		return *override, nil
	}
	return s.store.GetTaxConfig(ctx)
}

// allTransactions pages through the whole ledger. The estimate always covers
// everything; period filtering happens client-side on listings, not here.
func (s *TaxService) allTransactions(ctx context.Context) ([]core.Transaction, error) {
	var all []core.Transaction
	for page := 0; ; page++ {
		batch, err := s.store.ListTransactions(ctx, storage.TransactionFilter{Page: page})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < storage.PageSize {
			return all, nil
		}
	}
}
