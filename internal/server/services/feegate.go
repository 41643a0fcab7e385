package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"golang.org/x/crypto/hkdf"
)

const subaccountLen = 32

// GetFeeInvoice returns the invoice of a submission awaiting its fee. The
// invoice depends only on the submission id and the configured secret and
// amount, so repeated calls return the same value.
func (s *SubmissionService) GetFeeInvoice(ctx context.Context, id int64) (inv *models.Invoice, err error) {
	ctx, span := s.start(ctx, "GetFeeInvoice", id)
	defer func() { s.end(ctx, span, "GetFeeInvoice", id, err) }()

	if _, err := s.load(ctx, id, models.KindAwaitingFee); err != nil {
		return nil, err
	}
	return s.invoice(id)
}

func (s *SubmissionService) invoice(id int64) (*models.Invoice, error) {
	r := hkdf.New(sha256.New, s.invoiceSecret, nil, fmt.Appendf(nil, "artvault-invoice:%d", id))

	var out [subaccountLen + 8]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return nil, fmt.Errorf("derive invoice: %w", err)
	}

	return &models.Invoice{
		SubmissionID: id,
		Amount:       s.feeAmount,
		Memo:         binary.BigEndian.Uint64(out[subaccountLen:]),
		Subaccount:   append([]byte(nil), out[:subaccountLen]...),
	}, nil
}

// ConfirmFee asks the ledger whether the invoice has been paid and, if so,
// moves the submission to Verifying. Confirming an already confirmed fee
// returns the submission unchanged.
func (s *SubmissionService) ConfirmFee(ctx context.Context, id int64) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "ConfirmFee", id)
	defer func() { s.end(ctx, span, "ConfirmFee", id, err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	sub, err = s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sub); err != nil {
		return nil, err
	}

	kind := sub.Status.Kind()
	if sub.FeePaid && kind > models.KindAwaitingFee {
		return sub, nil
	}
	if kind != models.KindAwaitingFee {
		return nil, wrongState(id, kind, models.KindAwaitingFee)
	}

	inv, err := s.invoice(id)
	if err != nil {
		return nil, err
	}

	done := s.collaborator("ledger")
	payment, err := s.ledger.FindPayment(ctx, *inv)
	done()
	if err != nil {
		if errors.Is(err, common.ErrPaymentNotFound) || errors.Is(err, common.ErrLedgerUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrLedgerUnavailable, err)
	}
	if payment == nil {
		return nil, common.ErrPaymentNotFound
	}
	if payment.Amount < inv.Amount || payment.Memo != inv.Memo {
		return nil, fmt.Errorf("%w: payment %s does not settle the invoice", common.ErrPaymentNotFound, payment.Reference)
	}

	ref := payment.Reference
	if ref == "" {
		ref = fmt.Sprintf("memo:%d", inv.Memo)
	}

	if err := s.registry.Transition(ctx, id, models.Transition{
		From:          models.KindAwaitingFee,
		To:            models.Verifying{},
		FeePaymentRef: ref,
	}); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "fee confirmed", "submission_id", id, "payment", ref, "amount", payment.Amount)
	return s.registry.Get(ctx, id)
}
