// Package sheets defines the ports for the export target. The only
// implementation today is Google Sheets, but the worker depends on these
// interfaces, not on the Google client.
package sheets

import (
	"context"

	"pnltracker/internal/core"
)

type (
	// TransactionWriter appends or refreshes one ledger row in the export
	// target and returns an opaque reference to it.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction, categoryName string) (rowRef string, err error)
	}

	// TransactionDeleter removes a ledger row by transaction ID.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)
