package models

import "fmt"

// StatusKind enumerates the lifecycle states of a submission.
type StatusKind uint8

const (
	KindPendingUpload StatusKind = iota + 1
	KindAwaitingFee
	KindVerifying
	KindVerified
	KindRejected
	KindRewarded
)

var kindNames = map[StatusKind]string{
	KindPendingUpload: "pending_upload",
	KindAwaitingFee:   "awaiting_fee",
	KindVerifying:     "verifying",
	KindVerified:      "verified",
	KindRejected:      "rejected",
	KindRewarded:      "rewarded",
}

func (k StatusKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(k))
}

// ParseStatusKind is the inverse of StatusKind.String.
func ParseStatusKind(s string) (StatusKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// Status is a closed union: only the variant types declared in this file
// implement it.
type Status interface {
	Kind() StatusKind
	isStatus()
}

type PendingUpload struct{}
type AwaitingFee struct{}
type Verifying struct{}

// Verified carries the scores of the approving verdict.
type Verified struct {
	Originality uint16
	Visibility  uint16
}

// Rejected carries the reason of the rejecting verdict.
type Rejected struct {
	Reason string
}

type Rewarded struct{}

func (PendingUpload) Kind() StatusKind { return KindPendingUpload }
func (AwaitingFee) Kind() StatusKind   { return KindAwaitingFee }
func (Verifying) Kind() StatusKind     { return KindVerifying }
func (Verified) Kind() StatusKind      { return KindVerified }
func (Rejected) Kind() StatusKind      { return KindRejected }
func (Rewarded) Kind() StatusKind      { return KindRewarded }

func (PendingUpload) isStatus() {}
func (AwaitingFee) isStatus()   {}
func (Verifying) isStatus()     {}
func (Verified) isStatus()      {}
func (Rejected) isStatus()      {}
func (Rewarded) isStatus()      {}

var edges = map[StatusKind][]StatusKind{
	KindPendingUpload: {KindAwaitingFee},
	KindAwaitingFee:   {KindVerifying},
	KindVerifying:     {KindVerified, KindRejected},
	KindVerified:      {KindRewarded},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
// The administrative override does not consult it.
func CanTransition(from, to StatusKind) bool {
	for _, k := range edges[from] {
		if k == to {
			return true
		}
	}
	return false
}

// StatusFromVerdict builds the status variant a recorded verdict leads to.
func StatusFromVerdict(v Verdict) Status {
	if v.Approved {
		return Verified{Originality: v.Originality, Visibility: v.Visibility}
	}
	return Rejected{Reason: v.Reason}
}
