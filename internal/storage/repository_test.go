package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnltracker/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Date:   core.NewDate(2025, 3, 15),
		Name:   "Client invoice",
		Type:   core.Income,
		Amount: core.Money{Cents: 250000},
		Notes:  "March retainer",
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	got, err := repo.GetTransaction(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Name, got.Name)
	assert.Equal(t, stored.Amount, got.Amount)
	assert.Equal(t, "2025-03-15", got.Date.String())
	assert.Empty(t, got.CategoryID)
	assert.Empty(t, got.RecurringID)

	_, err = repo.GetTransaction(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2025, 1, 10),
		core.NewDate(2025, 2, 10),
		core.NewDate(2025, 3, 10),
	}
	for i, d := range dates {
		tx := sampleTransaction()
		tx.Date = d
		if i == 1 {
			tx.Type = core.Expense
			tx.Name = "Supplies"
		}
		_, err := repo.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	all, err := repo.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-10", all[0].Date.String(), "newest first")

	expenses, err := repo.ListTransactions(ctx, TransactionFilter{Type: core.Expense})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Supplies", expenses[0].Name)

	ranged, err := repo.ListTransactions(ctx, TransactionFilter{
		From: core.NewDate(2025, 2, 1),
		To:   core.NewDate(2025, 2, 28),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)

	empty, err := repo.ListTransactions(ctx, TransactionFilter{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateTransactionResetsSyncStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	require.NoError(t, repo.MarkSynced(ctx, stored.ID))

	pending, err := repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored.Name = "Client invoice (revised)"
	require.NoError(t, repo.UpdateTransaction(ctx, stored))

	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stored.ID, pending[0].ID)
	assert.EqualValues(t, 2, pending[0].Version, "version bumps on update")

	missing := stored
	missing.ID = "nope"
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, missing), core.ErrNotFound)
}

func TestBulkCreateAndSeries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var batch []core.Transaction
	date := core.NewDate(2025, 1, 1)
	for i := 0; i < 3; i++ {
		tx := sampleTransaction()
		tx.Name = "Rent"
		tx.Type = core.Expense
		tx.Date = date
		tx.RecurringID = "series-1"
		batch = append(batch, tx)
		date = date.AddDays(7)
	}

	stored, err := repo.BulkCreateTransactions(ctx, batch)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	series, err := repo.GetSeries(ctx, "series-1")
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-01-01", series[0].Date.String(), "ascending by date")

	summaries, err := repo.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "series-1", summaries[0].RecurringID)
	assert.Equal(t, 3, summaries[0].TransactionCount)
	assert.Equal(t, "2025-01-01", summaries[0].FirstDate.String())
	assert.Equal(t, "2025-01-15", summaries[0].LastDate.String())

	_, err = repo.GetSeries(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateAndDeleteSeries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var batch []core.Transaction
	for i := 0; i < 2; i++ {
		tx := sampleTransaction()
		tx.RecurringID = "series-2"
		tx.Date = core.NewDate(2025, 1, 1+i*7)
		batch = append(batch, tx)
	}
	_, err := repo.BulkCreateTransactions(ctx, batch)
	require.NoError(t, err)

	newName := "Updated name"
	n, err := repo.UpdateSeries(ctx, "series-2", SeriesUpdate{Name: &newName})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	series, err := repo.GetSeries(ctx, "series-2")
	require.NoError(t, err)
	for _, tx := range series {
		assert.Equal(t, newName, tx.Name)
	}

	// No fields means no write.
	n, err = repo.UpdateSeries(ctx, "series-2", SeriesUpdate{})
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err := repo.DeleteSeries(ctx, "series-2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
}

func TestDeleteTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		stored, err := repo.CreateTransaction(ctx, sampleTransaction())
		require.NoError(t, err)
		ids = append(ids, stored.ID)
	}

	require.NoError(t, repo.DeleteTransactions(ctx, ids[:2]))
	remaining, err := repo.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	require.NoError(t, repo.DeleteTransactions(ctx, nil))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "missing"), core.ErrNotFound)
}

func TestSeededCategories(t *testing.T) {
	repo := newTestRepository(t)

	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cats, "migrations seed the default categories")

	byName := make(map[string]core.Category)
	for _, c := range cats {
		byName[c.Name] = c
	}
	meals, ok := byName["Business Meals"]
	require.True(t, ok)
	assert.Equal(t, core.Expense, meals.Type)
	assert.Equal(t, 50.0, meals.DeductibilityPercent)
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	c, err := repo.CreateCategory(ctx, core.Category{
		Name: "Equipment", Type: core.Expense, DeductibilityPercent: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	c.DeductibilityPercent = 80
	require.NoError(t, repo.UpdateCategory(ctx, c))

	tx := sampleTransaction()
	tx.Type = core.Expense
	tx.CategoryID = c.ID
	stored, err := repo.CreateTransaction(ctx, tx)
	require.NoError(t, err)

	// Deleting the category orphans the transaction instead of cascading.
	require.NoError(t, repo.DeleteCategory(ctx, c.ID))
	got, err := repo.GetTransaction(ctx, stored.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, c.ID), core.ErrNotFound)
}

func TestTaxConfigRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	cfg, err := repo.GetTaxConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.ModeSmart, cfg.Mode, "fresh database starts with defaults")

	cfg.Mode = core.ModeSimple
	cfg.SimpleRate = 30
	cfg.FilingStatus = core.MarriedJoint
	cfg.Dependents = 2
	cfg.SpouseGrossIncome = 65000
	require.NoError(t, repo.SaveTaxConfig(ctx, cfg))

	back, err := repo.GetTaxConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	b, err := repo.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)

	pending, err := repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2, "new rows start pending")

	require.NoError(t, repo.MarkSynced(ctx, a.ID))
	require.NoError(t, repo.MarkSyncError(ctx, b.ID))

	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "synced and errored rows leave the queue")
}
