package services

import (
	"context"
	"fmt"

	"pnltracker/internal/core"
	"pnltracker/internal/log"
	"pnltracker/internal/recurring"
	"pnltracker/internal/storage"
)

// RecurringService manages series of repeating transactions. Series are
// fully materialized at creation time; later adjustments are computed as
// delete/insert plans by the recurring package and applied here.
type RecurringService struct {
	store     SeriesStore
	publisher Publisher
	logger    *log.Logger
}

func NewRecurringService(store SeriesStore, publisher Publisher, logger *log.Logger) *RecurringService {
	return &RecurringService{store: store, publisher: publisher, logger: logger}
}

// CreateSeries projects base at the given frequency through endDate and
// inserts every instance atomically.
func (s *RecurringService) CreateSeries(ctx context.Context, base core.Transaction, freq core.Frequency, endDate, today core.Date) ([]core.Transaction, error) {
	base.Name = core.SanitizeText(base.Name)
	base.Notes = core.SanitizeText(base.Notes)
	if err := base.Validate(); err != nil {
		return nil, err
	}

	instances, err := recurring.Project(base, freq, endDate, today)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", core.ErrInvalidRange, base.Date, endDate)
	}

	stored, err := s.store.BulkCreateTransactions(ctx, instances)
	if err != nil {
		return nil, err
	}

	for _, tx := range stored {
		s.publishUpsert(ctx, tx.ID)
	}

	s.logger.InfoContext(ctx, "Recurring series created",
		log.FieldRecurringID, stored[0].RecurringID,
		log.FieldCount, len(stored),
		"frequency", string(freq),
		"end_date", endDate.String())

	return stored, nil
}

func (s *RecurringService) GetSeries(ctx context.Context, recurringID string) ([]core.Transaction, error) {
	return s.store.GetSeries(ctx, recurringID)
}

func (s *RecurringService) ListSeries(ctx context.Context) ([]storage.SeriesSummary, error) {
	return s.store.ListSeries(ctx)
}

// UpdateEndDate reconciles a series against a new end date and applies the
// resulting plan: instances past the date are removed, and the series is
// extended up to it at its inferred interval. Returns how many instances
// were deleted and added.
func (s *RecurringService) UpdateEndDate(ctx context.Context, recurringID string, newEnd, today core.Date) (deleted, added int, err error) {
	if err := newEnd.Validate(); err != nil {
		return 0, 0, err
	}
	horizon := today.AddDate(recurring.MaxHorizonYears, 0, 0)
	if newEnd.After(horizon) {
		return 0, 0, fmt.Errorf("%w: end date %s exceeds %d-year horizon", core.ErrInvalidRange, newEnd, recurring.MaxHorizonYears)
	}

	series, err := s.store.GetSeries(ctx, recurringID)
	if err != nil {
		return 0, 0, err
	}

	plan := recurring.ReconcileEndDate(series, newEnd)
	if plan.Empty() {
		return 0, 0, nil
	}

	if err := s.store.DeleteTransactions(ctx, plan.ToDelete); err != nil {
		return 0, 0, fmt.Errorf("apply plan deletes: %w", err)
	}
	inserted, err := s.store.BulkCreateTransactions(ctx, plan.ToAdd)
	if err != nil {
		return 0, 0, fmt.Errorf("apply plan inserts: %w", err)
	}

	for _, id := range plan.ToDelete {
		s.publishDelete(ctx, id)
	}
	for _, tx := range inserted {
		s.publishUpsert(ctx, tx.ID)
	}

	s.logger.InfoContext(ctx, "Series end date reconciled",
		log.FieldRecurringID, recurringID,
		"deleted", len(plan.ToDelete),
		"added", len(inserted),
		"end_date", newEnd.String())

	return len(plan.ToDelete), len(inserted), nil
}

// EndToday removes every instance strictly after today, keeping history
// intact. Returns how many instances were removed.
func (s *RecurringService) EndToday(ctx context.Context, recurringID string, today core.Date) (int, error) {
	series, err := s.store.GetSeries(ctx, recurringID)
	if err != nil {
		return 0, err
	}

	toDelete := recurring.EndSeriesToday(series, today)
	if len(toDelete) == 0 {
		return 0, nil
	}

	if err := s.store.DeleteTransactions(ctx, toDelete); err != nil {
		return 0, err
	}
	for _, id := range toDelete {
		s.publishDelete(ctx, id)
	}

	s.logger.InfoContext(ctx, "Series ended",
		log.FieldRecurringID, recurringID, "deleted", len(toDelete))

	return len(toDelete), nil
}

// UpdateSeries edits the shared fields of every instance. Dates and the
// recurring id are immutable; use UpdateEndDate to change the schedule.
// Updated rows are re-exported by the pending sweep.
func (s *RecurringService) UpdateSeries(ctx context.Context, recurringID string, upd storage.SeriesUpdate) (int64, error) {
	if upd.Name != nil {
		name := core.SanitizeText(*upd.Name)
		if name == "" {
			return 0, core.ErrEmptyName
		}
		if len(name) > core.MaxNameLength {
			return 0, fmt.Errorf("%w: name exceeds %d characters", core.ErrTooLong, core.MaxNameLength)
		}
		upd.Name = &name
	}
	if upd.Type != nil {
		if err := upd.Type.Validate(); err != nil {
			return 0, err
		}
	}
	if upd.Amount != nil {
		if err := upd.Amount.Validate(); err != nil {
			return 0, err
		}
	}
	if upd.Notes != nil {
		notes := core.SanitizeText(*upd.Notes)
		if len(notes) > core.MaxNotesLength {
			return 0, fmt.Errorf("%w: notes exceed %d characters", core.ErrTooLong, core.MaxNotesLength)
		}
		upd.Notes = &notes
	}

	n, err := s.store.UpdateSeries(ctx, recurringID, upd)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("series %s: %w", recurringID, core.ErrNotFound)
	}
	return n, nil
}

// DeleteSeries removes a whole series, history included.
func (s *RecurringService) DeleteSeries(ctx context.Context, recurringID string) (int64, error) {
	series, err := s.store.GetSeries(ctx, recurringID)
	if err != nil {
		return 0, err
	}

	n, err := s.store.DeleteSeries(ctx, recurringID)
	if err != nil {
		return 0, err
	}
	for _, tx := range series {
		s.publishDelete(ctx, tx.ID)
	}

	s.logger.InfoContext(ctx, "Series deleted",
		log.FieldRecurringID, recurringID, log.FieldCount, n)

	return n, nil
}

func (s *RecurringService) publishUpsert(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUpsert(ctx, id, 0); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish export message, pending sweep will pick it up",
			log.FieldTransactionID, id, log.FieldError, err)
	}
}

func (s *RecurringService) publishDelete(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDelete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish delete, sheet row will go stale until next export",
			log.FieldTransactionID, id, log.FieldError, err)
	}
}
