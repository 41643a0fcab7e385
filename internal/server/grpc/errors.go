package grpc

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"
)

// retryDelay is the back-off suggested to clients for transient failures.
const retryDelay = 2 * time.Second

var errorCodes = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{common.ErrorNotFound, codes.NotFound, "NOT_FOUND"},
	{common.ErrWrongState, codes.FailedPrecondition, "WRONG_STATE"},
	{common.ErrInvalidTransition, codes.FailedPrecondition, "INVALID_TRANSITION"},
	{common.ErrInvalidOverride, codes.FailedPrecondition, "INVALID_OVERRIDE"},
	{common.ErrSizeExceeded, codes.ResourceExhausted, "SIZE_EXCEEDED"},
	{common.ErrSizeMismatch, codes.DataLoss, "SIZE_MISMATCH"},
	{common.ErrHashMismatch, codes.DataLoss, "HASH_MISMATCH"},
	{common.ErrIncompleteAsset, codes.InvalidArgument, "INCOMPLETE_ASSET"},
	{common.ErrChunkIndexOutOfRange, codes.InvalidArgument, "CHUNK_INDEX_OUT_OF_RANGE"},
	{common.ErrUnsupportedMediaType, codes.InvalidArgument, "UNSUPPORTED_MEDIA_TYPE"},
	{common.ErrInvalidVerdict, codes.InvalidArgument, "INVALID_VERDICT"},
	{common.ErrPaymentNotFound, codes.Unavailable, "PAYMENT_NOT_FOUND"},
	{common.ErrLedgerUnavailable, codes.Unavailable, "LEDGER_UNAVAILABLE"},
	{common.ErrOracleUnavailable, codes.Unavailable, "ORACLE_UNAVAILABLE"},
	{common.ErrIssuerUnavailable, codes.Unavailable, "ISSUER_UNAVAILABLE"},
	{common.ErrStorageUnavailable, codes.Unavailable, "STORAGE_UNAVAILABLE"},
	{common.ErrTokenExpired, codes.Unauthenticated, "TOKEN_EXPIRED"},
	{common.ErrInvalidToken, codes.Unauthenticated, "INVALID_TOKEN"},
	{common.ErrorUnauthorized, codes.Unauthenticated, "UNAUTHENTICATED"},
	{common.ErrorForbidden, codes.PermissionDenied, "FORBIDDEN"},
}

// toStatus converts a service error into a gRPC status error carrying
// ErrorInfo and, for retryable errors, RetryInfo. Internal errors keep
// their message out of the response.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code, reason, msg := codes.Internal, "INTERNAL", common.ErrorInternal.Error()
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			code, reason, msg = e.code, e.reason, err.Error()
			break
		}
	}

	retryable := common.IsRetryable(err)
	details := []protoadapt.MessageV1{
		&errdetails.ErrorInfo{
			Reason:   reason,
			Domain:   common.ErrorDomain,
			Metadata: map[string]string{"retryable": strconv.FormatBool(retryable)},
		},
	}
	if retryable {
		details = append(details, &errdetails.RetryInfo{RetryDelay: durationpb.New(retryDelay)})
	}

	st, detailErr := status.New(code, msg).WithDetails(details...)
	if detailErr != nil {
		return status.New(code, msg).Err()
	}
	return st.Err()
}

