package services

import (
	"context"
	"fmt"

	"pnltracker/internal/core"
	"pnltracker/internal/log"
	"pnltracker/internal/storage"
)

// TransactionService handles one-off ledger entries and CSV import batches.
type TransactionService struct {
	store     TransactionStore
	publisher Publisher
	logger    *log.Logger
}

// NewTransactionService creates the service. publisher may be nil when the
// broker is not configured; exports then rely on the pending sweep alone.
func NewTransactionService(store TransactionStore, publisher Publisher, logger *log.Logger) *TransactionService {
	return &TransactionService{store: store, publisher: publisher, logger: logger}
}

func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Name = core.SanitizeText(tx.Name)
	tx.Notes = core.SanitizeText(tx.Notes)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishUpsert(ctx, stored.ID)
	return stored, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, filter)
}

func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		return core.Transaction{}, fmt.Errorf("transaction id is required: %w", core.ErrNotFound)
	}
	tx.Name = core.SanitizeText(tx.Name)
	tx.Notes = core.SanitizeText(tx.Notes)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	s.publishUpsert(ctx, tx.ID)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDelete(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish delete, sheet row will go stale until next export",
				log.FieldTransactionID, id, log.FieldError, err)
		}
	}
	return nil
}

// ImportBatch validates and inserts a batch of imported transactions
// atomically. A single invalid row fails the whole batch so a half-imported
// statement never lands.
func (s *TransactionService) ImportBatch(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for i := range txs {
		txs[i].Name = core.SanitizeText(txs[i].Name)
		txs[i].Notes = core.SanitizeText(txs[i].Notes)
		if err := txs[i].Validate(); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, txs[i].Name, err)
		}
	}

	stored, err := s.store.BulkCreateTransactions(ctx, txs)
	if err != nil {
		return nil, err
	}

	for _, tx := range stored {
		s.publishUpsert(ctx, tx.ID)
	}

	s.logger.InfoContext(ctx, "Statement batch imported", log.FieldCount, len(stored))
	return stored, nil
}

func (s *TransactionService) publishUpsert(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUpsert(ctx, id, 0); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish export message, pending sweep will pick it up",
			log.FieldTransactionID, id, log.FieldError, err)
	}
}
