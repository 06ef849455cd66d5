// Package worker exports committed transactions to the configured sheet.
// It consumes queue messages for low latency and sweeps the pending flag as
// a backstop, so exports survive lost messages and worker downtime.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pnltracker/internal/amqp"
	"pnltracker/internal/core"
	"pnltracker/internal/sheets"
	"pnltracker/internal/storage"
)

type SyncWorker struct {
	storage   *storage.Repository
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	batchSize int
}

func NewSyncWorker(repo *storage.Repository, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   repo,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single queue message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	switch msg.Kind {
	case amqp.KindUpsert:
		return w.exportTransaction(ctx, msg.ID)
	case amqp.KindDelete:
		return w.deleteFromSheet(ctx, msg.ID)
	default:
		// Unknown kinds are dropped, not requeued; requeueing would loop
		// forever on a message this version cannot understand.
		slog.WarnContext(ctx, "Dropping message of unknown kind",
			"kind", string(msg.Kind), "transaction_id", msg.ID)
		return nil
	}
}

func (w *SyncWorker) exportTransaction(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between message and processing; nothing to export.
		slog.InfoContext(ctx, "Transaction gone before export, skipping", "transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	ref, err := w.writer.Append(ctx, tx, w.categoryName(ctx, tx.CategoryID))
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The export itself worked; log and move on.
		slog.ErrorContext(ctx, "Failed to mark as synced", "transaction_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", id,
		"row_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}

func (w *SyncWorker) deleteFromSheet(ctx context.Context, id string) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, skipping sheet deletion", "transaction_id", id)
		return nil
	}
	if err := w.deleter.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete from sheet: %w", err)
	}
	return nil
}

// ProcessPending sweeps transactions whose export never happened, e.g.
// because the broker was down when they were written.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"transaction_id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSweep runs a larger pending pass once at worker startup to recover
// from downtime.
func (w *SyncWorker) StartupSweep(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup sweep: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Startup export failed", "transaction_id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(pending), "synced", synced, "errors", failed)

	return nil
}

// categoryName resolves a category ID for the export row. Lookup failures
// degrade to an empty name rather than blocking the export.
func (w *SyncWorker) categoryName(ctx context.Context, categoryID string) string {
	if categoryID == "" {
		return ""
	}
	cats, err := w.storage.ListCategories(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve category name", "category_id", categoryID, "error", err)
		return ""
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return c.Name
		}
	}
	return ""
}
