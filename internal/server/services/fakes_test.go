package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/dbx"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/recognition"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/rewards"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/submissions"
	_ "modernc.org/sqlite"
)

// fakeSubmissions mirrors the Postgres repository semantics in memory,
// including the status compare-and-set.
type fakeSubmissions struct {
	mu        sync.Mutex
	rows      map[int64]*models.Submission
	overrides []*models.Override
	nextID    int64

	transitions []models.Transition
	applyErr    error
}

func newFakeSubmissions() *fakeSubmissions {
	return &fakeSubmissions{rows: make(map[int64]*models.Submission)}
}

func (f *fakeSubmissions) Create(_ context.Context, owner string, now time.Time) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := &models.Submission{ID: f.nextID, Owner: owner, CreatedAt: now, UpdatedAt: now, Status: models.PendingUpload{}}
	f.rows[s.ID] = s
	return s.Clone(), nil
}

func (f *fakeSubmissions) Get(_ context.Context, id int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("submission %d: %w", id, common.ErrorNotFound)
	}
	return s.Clone(), nil
}

func (f *fakeSubmissions) GetForUpdate(ctx context.Context, id int64) (*models.Submission, error) {
	return f.Get(ctx, id)
}

func (f *fakeSubmissions) ApplyTransition(_ context.Context, id int64, t models.Transition, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	s, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("submission %d: %w", id, common.ErrorNotFound)
	}
	if s.Status.Kind() != t.From {
		return fmt.Errorf("%w: submission %d is %s", common.ErrInvalidTransition, id, s.Status.Kind())
	}
	s.Status = t.To
	s.UpdatedAt = now
	if t.Asset != nil {
		a := *t.Asset
		s.Asset = &a
	}
	if t.To.Kind() == models.KindVerifying {
		s.FeePaid = true
	}
	if t.FeePaymentRef != "" {
		s.FeePaymentRef = t.FeePaymentRef
	}
	if t.Verdict != nil {
		v := *t.Verdict
		s.Verdict = &v
	}
	if t.Reward != nil {
		r := *t.Reward
		s.Reward = &r
	}
	f.transitions = append(f.transitions, t)
	return nil
}

func (f *fakeSubmissions) Replace(_ context.Context, s *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.ID]; !ok {
		return common.ErrorNotFound
	}
	f.rows[s.ID] = s.Clone()
	return nil
}

func (f *fakeSubmissions) InsertOverride(_ context.Context, o *models.Override) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *o
	c.ID = int64(len(f.overrides) + 1)
	f.overrides = append(f.overrides, &c)
	return c.ID, nil
}

func (f *fakeSubmissions) ListOverrides(_ context.Context, id int64) ([]*models.Override, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Override
	for _, o := range f.overrides {
		if o.SubmissionID == id {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) ListApproved(_ context.Context, limit, offset int) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Submission
	for id := f.nextID; id >= 1; id-- {
		s, ok := f.rows[id]
		if !ok {
			continue
		}
		if k := s.Status.Kind(); k == models.KindVerified || k == models.KindRewarded {
			out = append(out, s.Clone())
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSubmissions) CountApproved(ctx context.Context) (int64, error) {
	all, err := f.ListApproved(ctx, 1<<30, 0)
	return int64(len(all)), err
}

func (f *fakeSubmissions) transitionCount(to models.StatusKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.transitions {
		if t.To.Kind() == to {
			n++
		}
	}
	return n
}

type fakeManager struct {
	subs *fakeSubmissions
}

var _ repomanager.RepositoryManager = (*fakeManager)(nil)

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Submissions(dbx.DBTX) submissions.Repository { return m.subs }
func (m *fakeManager) Rewards(dbx.DBTX) rewards.Repository          { return nil }

type countingIssuer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingIssuer) Issue(_ context.Context, s *models.Submission) (*models.Reward, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.Reward{TokenID: s.ID * 10, TxID: fmt.Sprintf("tx-%d", s.ID), IssuedAt: time.Unix(1, 0).UTC()}, nil
}

func (c *countingIssuer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type scriptedOracle struct {
	scores recognition.Scores
	err    error
	calls  int
	seen   recognition.Asset
}

func (o *scriptedOracle) Assess(ctx context.Context, a recognition.Asset) (models.Verdict, error) {
	o.calls++
	o.seen = a
	if o.err != nil {
		return models.Verdict{}, o.err
	}
	return recognition.Policy{MinOriginality: 50, MinVisibility: 50}.Decide(o.scores, time.Unix(2, 0).UTC()), nil
}

// newTxDB opens an in-memory SQLite database. The fake repositories ignore
// it; it only gives dbx.WithTx something real to begin and commit.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
