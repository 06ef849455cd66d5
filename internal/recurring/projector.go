// Package recurring plans the materialization of repeating transactions.
//
// A series is a group of transactions sharing one recurring_id. The
// functions here are pure: they compute which instances should exist, and
// the caller applies the resulting inserts and deletes to storage.
package recurring

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"pnltracker/internal/core"
)

// MaxHorizonYears bounds how far into the future a series may be projected.
const MaxHorizonYears = 10

const (
	defaultIntervalDays = 30
	minIntervalDays     = 7
)

// Plan is the delete/insert set produced by reconciling a series. Applying
// it atomically is the storage layer's job.
type Plan struct {
	ToDelete []string           `json:"to_delete"`
	ToAdd    []core.Transaction `json:"to_add"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToAdd) == 0
}

// Project generates the dated instances of a repeating transaction, one per
// frequency step from base.Date up to and including endDate. Every instance
// carries a freshly generated recurring_id and copies the remaining fields
// from base verbatim; instance IDs are left empty for storage to assign.
//
// endDate must not be before today and must not exceed MaxHorizonYears from
// today, otherwise core.ErrInvalidRange is returned. A base date past
// endDate yields an empty, error-free result.
//
// Monthly stepping follows time.AddDate normalization: a day-of-month that
// does not exist in the target month rolls into the following month
// (Jan 31 + 1 month = Mar 2 or Mar 3). The rule is deliberate and must not
// change without a data migration for existing series.
func Project(base core.Transaction, freq core.Frequency, endDate, today core.Date) ([]core.Transaction, error) {
	if err := freq.Validate(); err != nil {
		return nil, err
	}
	if err := endDate.Validate(); err != nil {
		return nil, err
	}
	if endDate.Before(today.Time) {
		return nil, fmt.Errorf("%w: end date %s is in the past", core.ErrInvalidRange, endDate)
	}
	horizon := today.AddDate(MaxHorizonYears, 0, 0)
	if endDate.After(horizon) {
		return nil, fmt.Errorf("%w: end date %s exceeds %d-year horizon", core.ErrInvalidRange, endDate, MaxHorizonYears)
	}

	recurringID := uuid.NewString()
	var instances []core.Transaction

	current := base.Date
	for !current.After(endDate.Time) {
		instance := base
		instance.ID = ""
		instance.Date = current
		instance.RecurringID = recurringID
		instances = append(instances, instance)

		switch freq {
		case core.Weekly:
			current = current.AddDays(7)
		case core.Monthly:
			current = core.Date{Time: current.AddDate(0, 1, 0)}
		case core.Yearly:
			current = core.Date{Time: current.AddDate(1, 0, 0)}
		}
	}

	return instances, nil
}

// ReconcileEndDate computes the plan that brings an existing series in line
// with a new end date: instances past the date are deleted, and the series
// is extended up to it at the interval inferred from the last two surviving
// instances (30 days when fewer than two remain, never less than 7).
//
// Extension copies name, type, amount, category and notes from the last
// surviving instance, so a series shortened and then re-extended is rebuilt
// from its tail, not from its original template. Reconciling twice with the
// same date is a no-op the second time.
func ReconcileEndDate(series []core.Transaction, newEnd core.Date) Plan {
	sorted := make([]core.Transaction, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	var plan Plan
	var valid []core.Transaction
	for _, tx := range sorted {
		if tx.Date.After(newEnd.Time) {
			plan.ToDelete = append(plan.ToDelete, tx.ID)
		} else {
			valid = append(valid, tx)
		}
	}
	if len(valid) == 0 {
		return plan
	}

	last := valid[len(valid)-1]
	intervalDays := defaultIntervalDays
	if len(valid) >= 2 {
		intervalDays = last.Date.DaysSince(valid[len(valid)-2].Date)
	}
	if intervalDays < minIntervalDays {
		// Guards against a corrupted series with duplicate or out-of-order
		// dates producing an unbounded extension.
		intervalDays = minIntervalDays
	}

	current := last.Date.AddDays(intervalDays)
	for !current.After(newEnd.Time) {
		instance := core.Transaction{
			Date:        current,
			Name:        last.Name,
			Type:        last.Type,
			Amount:      last.Amount,
			CategoryID:  last.CategoryID,
			Notes:       last.Notes,
			RecurringID: last.RecurringID,
		}
		plan.ToAdd = append(plan.ToAdd, instance)
		current = current.AddDays(intervalDays)
	}

	return plan
}

// EndSeriesToday returns the IDs of every instance strictly after today.
// Instances on or before today stay; this is the "stop subscription"
// operation, distinct from deleting the whole series.
func EndSeriesToday(series []core.Transaction, today core.Date) []string {
	var toDelete []string
	for _, tx := range series {
		if tx.Date.After(today.Time) {
			toDelete = append(toDelete, tx.ID)
		}
	}
	return toDelete
}
