// Package services holds the application logic between the HTTP layer and
// storage: validation and sanitization, series materialization, tax
// estimation, and best-effort export publishing.
package services

import (
	"context"

	"pnltracker/internal/core"
	"pnltracker/internal/storage"
)

type (
	// TransactionStore is the persistence surface the transaction service
	// needs. *storage.Repository satisfies it.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		BulkCreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	// SeriesStore adds the recurring-series operations.
	SeriesStore interface {
		TransactionStore
		GetSeries(ctx context.Context, recurringID string) ([]core.Transaction, error)
		ListSeries(ctx context.Context) ([]storage.SeriesSummary, error)
		UpdateSeries(ctx context.Context, recurringID string, upd storage.SeriesUpdate) (int64, error)
		DeleteSeries(ctx context.Context, recurringID string) (int64, error)
		DeleteTransactions(ctx context.Context, ids []string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	TaxStore interface {
		ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]core.Transaction, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetTaxConfig(ctx context.Context) (core.TaxConfig, error)
		SaveTaxConfig(ctx context.Context, cfg core.TaxConfig) error
	}

	// Publisher queues export work for the sync worker. Publishing is
	// best-effort everywhere: the local write is the source of truth and the
	// worker sweeps pending rows, so callers log publish failures and move on.
	Publisher interface {
		PublishUpsert(ctx context.Context, id string, version int64) error
		PublishDelete(ctx context.Context, id string) error
	}
)
