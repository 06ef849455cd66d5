// Command csv-import loads a bank statement CSV into the ledger from the
// command line, using the same parser and validation as the API's import
// endpoints. Useful for backfilling history without running the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"pnltracker/internal/core"
	"pnltracker/internal/importer"
	applog "pnltracker/internal/log"
	"pnltracker/internal/services"
	"pnltracker/internal/storage"
)

var cli struct {
	File   string `arg:"" help:"Bank statement CSV file." type:"existingfile"`
	Year   int    `help:"Statement year for year-less dates (defaults to the current year)."`
	DBPath string `name:"db" help:"SQLite database path." env:"SQLITE_DB_PATH" default:"./data/pnltracker.db"`
	DryRun bool   `help:"Parse and print the rows without writing anything."`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("csv-import"),
		kong.Description("Import a bank statement CSV into the ledger."),
		kong.UsageOnError(),
	)

	logger := applog.New(applog.Config{Level: slog.LevelWarn, Component: applog.ComponentImport})
	applog.SetDefault(logger)

	kctx.FatalIfErrorf(run())
}

func run() error {
	ctx := context.Background()

	year := cli.Year
	if year == 0 {
		year = time.Now().Year()
	}

	repo, err := storage.NewRepository(cli.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	f, err := os.Open(cli.File)
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	result, err := importer.ParseStatement(f, year, categories)
	if err != nil {
		return fmt.Errorf("parse statement: %w", err)
	}

	if len(result.Rows) == 0 {
		fmt.Printf("No importable rows found (%d skipped)\n", result.Skipped)
		return nil
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for _, row := range result.Rows {
		category := names[row.SuggestedCategoryID]
		if category == "" {
			category = "-"
		}
		fmt.Printf("%s  %-40s  %10s  %-20s  %s\n",
			row.Date, truncate(row.Description, 40), row.Amount, category, row.Confidence)
	}
	fmt.Printf("\n%d rows parsed, %d skipped\n", len(result.Rows), result.Skipped)

	if cli.DryRun {
		fmt.Println("Dry run, nothing written.")
		return nil
	}

	txs := make([]core.Transaction, len(result.Rows))
	for i, row := range result.Rows {
		txs[i] = core.Transaction{
			Date:       row.Date,
			Name:       row.Description,
			Type:       row.SuggestedType,
			Amount:     row.Amount,
			CategoryID: row.SuggestedCategoryID,
		}
	}

	svc := services.NewTransactionService(repo, nil, applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentImport,
	}))
	stored, err := svc.ImportBatch(ctx, txs)
	if err != nil {
		return fmt.Errorf("import batch: %w", err)
	}

	fmt.Printf("Imported %d transactions into %s\n", len(stored), cli.DBPath)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
