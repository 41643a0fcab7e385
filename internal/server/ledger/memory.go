package ledger

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// Memory is an in-process ledger for development and tests.
type Memory struct {
	mu       sync.Mutex
	payments map[string][]models.Payment
	calls    int
}

func NewMemory() *Memory {
	return &Memory{payments: make(map[string][]models.Payment)}
}

// Pay records a transfer into subaccount.
func (m *Memory) Pay(subaccount []byte, p models.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := hex.EncodeToString(subaccount)
	m.payments[k] = append(m.payments[k], p)
}

func (m *Memory) FindPayment(_ context.Context, inv models.Invoice) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	p, ok := settles(inv, m.payments[hex.EncodeToString(inv.Subaccount)])
	if !ok {
		return nil, common.ErrPaymentNotFound
	}
	return p, nil
}

// Calls reports how many lookups were made.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
