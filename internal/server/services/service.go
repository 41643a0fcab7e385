// Package services contains the server-side submission engine: the registry
// of submission records and the components that move a submission through
// its lifecycle (chunk assembly, fee gate, verification, reward).
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/logging"
	"github.com/dmitrijs2005/artvault/internal/server/config"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/recognition"
	"github.com/dmitrijs2005/artvault/internal/server/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/artvault/internal/server/services"

// Ledger finds the payment settling an invoice.
type Ledger interface {
	FindPayment(ctx context.Context, inv models.Invoice) (*models.Payment, error)
}

// Oracle assesses an asset and returns the verdict to record.
type Oracle interface {
	Assess(ctx context.Context, a recognition.Asset) (models.Verdict, error)
}

// Issuer mints the reward of an approved submission. Issuing twice for the
// same submission must return the same reward.
type Issuer interface {
	Issue(ctx context.Context, s *models.Submission) (*models.Reward, error)
}

// Collaborators are the external systems the engine talks to.
type Collaborators struct {
	Store  storage.Store
	Ledger Ledger
	Oracle Oracle
	Issuer Issuer
}

// SubmissionService runs the submission lifecycle on top of the Registry.
// Operations on one submission are serialised by a per-submission lock;
// PutChunk calls share it.
type SubmissionService struct {
	registry *Registry
	store    storage.Store
	ledger   Ledger
	oracle   Oracle
	issuer   Issuer

	locks   *keyedLocks
	buffers *chunkBuffers

	metrics *Metrics
	log     logging.Logger
	tracer  trace.Tracer

	maxAssetBytes int64
	maxChunks     int
	allowedMedia  map[string]struct{}
	feeAmount     uint64
	invoiceSecret []byte
	presignTTL    time.Duration
}

func NewSubmissionService(registry *Registry, c Collaborators, cfg *config.Config, metrics *Metrics, log logging.Logger) *SubmissionService {
	allowed := make(map[string]struct{}, len(cfg.AllowedMediaTypes))
	for _, m := range cfg.AllowedMediaTypes {
		allowed[m] = struct{}{}
	}
	return &SubmissionService{
		registry:      registry,
		store:         c.Store,
		ledger:        c.Ledger,
		oracle:        c.Oracle,
		issuer:        c.Issuer,
		locks:         newKeyedLocks(),
		buffers:       newChunkBuffers(),
		metrics:       metrics,
		log:           log.With("module", "submissions"),
		tracer:        otel.Tracer(tracerName),
		maxAssetBytes: cfg.MaxAssetBytes,
		maxChunks:     cfg.MaxChunks,
		allowedMedia:  allowed,
		feeAmount:     cfg.FeeAmount,
		invoiceSecret: []byte(cfg.InvoiceSecret),
		presignTTL:    cfg.PresignTTL,
	}
}

// StartSubmission creates a submission owned by the caller.
func (s *SubmissionService) StartSubmission(ctx context.Context) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "StartSubmission", 0)
	defer func() { s.end(ctx, span, "StartSubmission", 0, err) }()

	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.Create(ctx, caller.ID)
}

// GetSubmission returns the current record. Any authenticated caller may read.
func (s *SubmissionService) GetSubmission(ctx context.Context, id int64) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "GetSubmission", id)
	defer func() { s.end(ctx, span, "GetSubmission", id, err) }()

	if _, err := identity.MustCaller(ctx); err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, id)
}

// OverrideVerdict is the administrative escape hatch; see Registry.Override.
func (s *SubmissionService) OverrideVerdict(ctx context.Context, id int64, to models.Status, reason string) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "OverrideVerdict", id)
	defer func() { s.end(ctx, span, "OverrideVerdict", id, err) }()

	caller, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	sub, err = s.registry.Override(ctx, id, to, reason, caller.ID)
	if err != nil {
		return nil, err
	}
	s.dropBuffer(id)
	return sub, nil
}

// ListOverrides returns the audit trail of a submission. Admin only.
func (s *SubmissionService) ListOverrides(ctx context.Context, id int64) (out []*models.Override, err error) {
	ctx, span := s.start(ctx, "ListOverrides", id)
	defer func() { s.end(ctx, span, "ListOverrides", id, err) }()

	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.registry.ListOverrides(ctx, id)
}

// authorize lets the owner and admins act on a submission.
func (s *SubmissionService) authorize(ctx context.Context, sub *models.Submission) error {
	caller, err := identity.MustCaller(ctx)
	if err != nil {
		return err
	}
	if caller.Admin || caller.ID == sub.Owner {
		return nil
	}
	return common.ErrorForbidden
}

// load fetches the submission, requires status want and an authorised caller.
func (s *SubmissionService) load(ctx context.Context, id int64, want models.StatusKind) (*models.Submission, error) {
	sub, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sub); err != nil {
		return nil, err
	}
	if got := sub.Status.Kind(); got != want {
		return nil, wrongState(id, got, want)
	}
	return sub, nil
}

func wrongState(id int64, got, want models.StatusKind) error {
	return fmt.Errorf("%w: submission %d is %s, need %s", common.ErrWrongState, id, got, want)
}

// collaborator times a call to an external system.
func (s *SubmissionService) collaborator(name string) func() {
	start := time.Now()
	return func() {
		s.metrics.collaboratorLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

func (s *SubmissionService) start(ctx context.Context, op string, id int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "SubmissionService."+op, trace.WithAttributes(attribute.Int64("submission.id", id)))
}

func (s *SubmissionService) end(ctx context.Context, span trace.Span, op string, id int64, err error) {
	defer span.End()
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.fail(op, err)

	if isRejection(err) {
		s.log.Warn(ctx, "request rejected", "op", op, "submission_id", id, "error", err)
		return
	}
	s.log.Error(ctx, "request failed", "op", op, "submission_id", id, "error", err)
}

// isRejection reports errors caused by the request rather than by a failing
// dependency.
func isRejection(err error) bool {
	if common.IsRetryable(err) {
		return false
	}
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			return true
		}
	}
	return false
}
