// Package ledger looks up fee payments on the external token ledger.
package ledger

import (
	"context"

	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// Client finds a payment settling an invoice. It returns
// common.ErrPaymentNotFound when no payment with the invoice memo and at
// least the invoice amount has reached the invoice subaccount, and
// common.ErrLedgerUnavailable when the ledger could not be queried.
type Client interface {
	FindPayment(ctx context.Context, inv models.Invoice) (*models.Payment, error)
}

// settles picks the first payment that carries the memo and covers the amount.
func settles(inv models.Invoice, payments []models.Payment) (*models.Payment, bool) {
	for i := range payments {
		p := payments[i]
		if p.Memo == inv.Memo && p.Amount >= inv.Amount {
			return &p, true
		}
	}
	return nil, false
}
