package services

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/dmitrijs2005/artvault/internal/logging"
	"github.com/dmitrijs2005/artvault/internal/server/config"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/ledger"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/recognition"
	"github.com/dmitrijs2005/artvault/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc      *SubmissionService
	registry *Registry
	subs     *fakeSubmissions
	ledger   *ledger.Memory
	oracle   *scriptedOracle
	issuer   *countingIssuer
	store    *storage.MemoryStore
	metrics  *Metrics
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MaxAssetBytes = 4 << 20
	cfg.MaxChunks = 16
	return cfg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithConfig(t, testConfig())
}

func newHarnessWithConfig(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{
		subs:    newFakeSubmissions(),
		ledger:  ledger.NewMemory(),
		oracle:  &scriptedOracle{scores: recognition.Scores{Originality: 80, Visibility: 70}},
		issuer:  &countingIssuer{},
		store:   storage.NewMemoryStore(),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	h.registry = NewRegistry(newTxDB(t), &fakeManager{subs: h.subs}, h.metrics, logging.Nop{})
	h.svc = NewSubmissionService(h.registry, Collaborators{
		Store:  h.store,
		Ledger: h.ledger,
		Oracle: h.oracle,
		Issuer: h.issuer,
	}, cfg, h.metrics, logging.Nop{})
	return h
}

var (
	alice = identity.WithCaller(context.Background(), identity.Caller{ID: "alice"})
	bob   = identity.WithCaller(context.Background(), identity.Caller{ID: "bob"})
	admin = identity.WithCaller(context.Background(), identity.Caller{ID: "root", Admin: true})
)

func hashOf(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
	}
	return b
}

// uploaded creates a submission owned by alice and finalizes a two chunk asset.
func (h *harness) uploaded(t *testing.T) (*models.Submission, []byte) {
	t.Helper()
	sub, err := h.svc.StartSubmission(alice)
	require.NoError(t, err)

	c0, c1 := pattern(1000, 1), pattern(500, 7)
	require.NoError(t, h.svc.PutChunk(alice, sub.ID, 0, c0))
	require.NoError(t, h.svc.PutChunk(alice, sub.ID, 1, c1))

	data := append(append([]byte(nil), c0...), c1...)
	_, err = h.svc.FinalizeAsset(alice, sub.ID, "image/png", int64(len(data)), hashOf(data))
	require.NoError(t, err)
	return sub, data
}

// paid brings a fresh submission to Verifying.
func (h *harness) paid(t *testing.T) *models.Submission {
	t.Helper()
	sub, _ := h.uploaded(t)
	inv, err := h.svc.GetFeeInvoice(alice, sub.ID)
	require.NoError(t, err)
	h.ledger.Pay(inv.Subaccount, models.Payment{Reference: "pay-" + string(rune('a'+sub.ID)), Amount: inv.Amount, Memo: inv.Memo})
	_, err = h.svc.ConfirmFee(alice, sub.ID)
	require.NoError(t, err)
	return sub
}

// verified brings a fresh submission to Verified.
func (h *harness) verified(t *testing.T) *models.Submission {
	t.Helper()
	sub := h.paid(t)
	got, err := h.svc.TriggerVerification(alice, sub.ID)
	require.NoError(t, err)
	require.Equal(t, models.KindVerified, got.Status.Kind())
	return sub
}
