// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

// ErrDataFormat is returned when a tabular source is missing a required
// column or holds a value that cannot be interpreted.
var ErrDataFormat = errors.New("invalid data format")

// CredentialStore defines the driven port for the credential table.
// Rows are returned in table order with values exactly as stored.
type CredentialStore interface {
	// LoadCredentials returns every credential row. A missing table yields an
	// empty slice.
	LoadCredentials(ctx context.Context) ([]model.CredentialRow, error)

	// SaveCredentials replaces the table with rows, preserving order.
	SaveCredentials(ctx context.Context, rows []model.CredentialRow) error
}

// AccountStore defines the driven port for the source accounts table
// consumed when fetching tokens.
type AccountStore interface {
	LoadAccounts(ctx context.Context) ([]model.Account, error)
}
