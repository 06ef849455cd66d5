// Package storage is the SQLite persistence layer. Dates are stored as
// YYYY-MM-DD text so lexicographic comparison matches chronological order;
// amounts are integer cents. Every write bumps the row version and resets
// sync_status so the export worker picks the change up.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pnltracker/internal/core"
)

// PageSize caps one page of transaction listings, matching the API's
// pagination contract.
const PageSize = 1000

type Repository struct {
	db *sql.DB
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// Page is zero-based.
type TransactionFilter struct {
	Type core.TransactionType
	From core.Date
	To   core.Date
	Page int
}

// SeriesSummary describes one recurring series, grouped from its instances.
type SeriesSummary struct {
	RecurringID      string               `json:"recurring_id"`
	Name             string               `json:"name"`
	Type             core.TransactionType `json:"type"`
	Amount           core.Money           `json:"amount"`
	CategoryID       string               `json:"category_id,omitempty"`
	TransactionCount int                  `json:"transaction_count"`
	FirstDate        core.Date            `json:"first_date"`
	LastDate         core.Date            `json:"last_date"`
}

// SeriesUpdate holds the optional field updates applied across a series.
// Date and recurring_id are immutable per instance.
type SeriesUpdate struct {
	Name       *string
	Type       *core.TransactionType
	Amount     *core.Money
	CategoryID *string
	Notes      *string
}

// PendingSync identifies a transaction awaiting export.
type PendingSync struct {
	ID      string
	Version int64
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// The pragma goes in the DSN so every pooled connection enforces
	// foreign keys, not just the one a PRAGMA statement happened to run on.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, date, name, type, amount_cents, category_id, notes, recurring_id"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var tx core.Transaction
	var date string
	var categoryID, recurringID sql.NullString
	err := row.Scan(&tx.ID, &date, &tx.Name, &tx.Type, &tx.Amount.Cents, &categoryID, &tx.Notes, &recurringID)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date: %w", err)
	}
	tx.CategoryID = categoryID.String
	tx.RecurringID = recurringID.String
	return tx, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateTransaction inserts one transaction, assigning an ID when empty,
// and returns the stored row.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, name, type, amount_cents, category_id, notes, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), tx.Name, string(tx.Type), tx.Amount.Cents,
		nullable(tx.CategoryID), tx.Notes, nullable(tx.RecurringID))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"name", tx.Name,
		"amount_cents", tx.Amount.Cents,
		"type", string(tx.Type))

	return tx, nil
}

// BulkCreateTransactions inserts a batch atomically. Used for series
// materialization and CSV imports; either every instance lands or none do.
func (r *Repository) BulkCreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, date, name, type, amount_cents, category_id, notes, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	stored := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.Date.String(), tx.Name, string(tx.Type), tx.Amount.Cents,
			nullable(tx.CategoryID), tx.Notes, nullable(tx.RecurringID)); err != nil {
			return nil, fmt.Errorf("bulk insert row %d: %w", i, err)
		}
		stored[i] = tx
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk insert: %w", err)
	}

	slog.InfoContext(ctx, "Transactions bulk inserted", "count", len(stored))
	return stored, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns one page of transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions"
	var conds []string
	var args []any

	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, filter.To.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, id LIMIT ? OFFSET ?"
	args = append(args, PageSize, filter.Page*PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// UpdateTransaction replaces the mutable fields of one transaction and
// queues it for re-export.
func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, name = ?, type = ?, amount_cents = ?, category_id = ?, notes = ?,
		    sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		tx.Date.String(), tx.Name, string(tx.Type), tx.Amount.Cents,
		nullable(tx.CategoryID), tx.Notes, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, core.ErrNotFound)
	}
	return nil
}

// UpdateSeries applies the given field updates to every instance of a
// series and returns how many rows changed.
func (r *Repository) UpdateSeries(ctx context.Context, recurringID string, upd SeriesUpdate) (int64, error) {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, upd.Amount.Cents)
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, nullable(*upd.CategoryID))
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "sync_status = 'pending'", "version = version + 1", "updated_at = CURRENT_TIMESTAMP")

	args = append(args, recurringID)
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE recurring_id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update series: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteTransactions removes a set of rows by ID in one statement.
func (r *Repository) DeleteTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

// DeleteSeries removes every instance of a series and returns the count.
func (r *Repository) DeleteSeries(ctx context.Context, recurringID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE recurring_id = ?", recurringID)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	return res.RowsAffected()
}

// GetSeries returns every instance of a series, date ascending.
func (r *Repository) GetSeries(ctx context.Context, recurringID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE recurring_id = ? ORDER BY date, id", recurringID)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("series %s: %w", recurringID, core.ErrNotFound)
	}
	return txs, nil
}

// ListSeries groups all recurring transactions into per-series summaries.
// Grouping happens here rather than in SQL so the summary fields come from
// the earliest instance, not an arbitrary row.
func (r *Repository) ListSeries(ctx context.Context) ([]SeriesSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE recurring_id IS NOT NULL ORDER BY date, id")
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	var summaries []SeriesSummary
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		i, ok := index[tx.RecurringID]
		if !ok {
			index[tx.RecurringID] = len(summaries)
			summaries = append(summaries, SeriesSummary{
				RecurringID: tx.RecurringID,
				Name:        tx.Name,
				Type:        tx.Type,
				Amount:      tx.Amount,
				CategoryID:  tx.CategoryID,
				FirstDate:   tx.Date,
				LastDate:    tx.Date,
			})
			i = len(summaries) - 1
		}
		summaries[i].TransactionCount++
		summaries[i].LastDate = tx.Date
	}
	return summaries, rows.Err()
}

// --- Categories ---

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, deductibility_percent FROM categories ORDER BY type, name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.DeductibilityPercent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, type, deductibility_percent) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, string(c.Type), c.DeductibilityPercent)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, deductibility_percent = ? WHERE id = ?",
		c.Name, string(c.Type), c.DeductibilityPercent, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category; transactions referencing it fall back
// to uncategorized via ON DELETE SET NULL.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// --- Tax config ---

func (r *Repository) GetTaxConfig(ctx context.Context) (core.TaxConfig, error) {
	var cfg core.TaxConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT mode, simple_rate, filing_status, dependents,
		       spouse_gross_income, spouse_federal_withholding, spouse_pretax_deduction_percent
		FROM tax_config WHERE id = 1`).Scan(
		&cfg.Mode, &cfg.SimpleRate, &cfg.FilingStatus, &cfg.Dependents,
		&cfg.SpouseGrossIncome, &cfg.SpouseFederalWithholding, &cfg.SpousePretaxDeductionPercent)
	if err != nil {
		return core.TaxConfig{}, fmt.Errorf("get tax config: %w", err)
	}
	return cfg, nil
}

func (r *Repository) SaveTaxConfig(ctx context.Context, cfg core.TaxConfig) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tax_config
		SET mode = ?, simple_rate = ?, filing_status = ?, dependents = ?,
		    spouse_gross_income = ?, spouse_federal_withholding = ?, spouse_pretax_deduction_percent = ?
		WHERE id = 1`,
		string(cfg.Mode), cfg.SimpleRate, string(cfg.FilingStatus), cfg.Dependents,
		cfg.SpouseGrossIncome, cfg.SpouseFederalWithholding, cfg.SpousePretaxDeductionPercent)
	if err != nil {
		return fmt.Errorf("save tax config: %w", err)
	}
	return nil
}

// --- Export bookkeeping ---

// GetPendingSync returns transactions still awaiting export, oldest first.
// The sync worker uses this as a backstop for lost broker messages.
func (r *Repository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, version FROM transactions WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'synced' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (r *Repository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'error' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "transaction_id", id)
	return nil
}
