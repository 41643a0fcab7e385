package models

import "time"

// Transition describes one edge of the lifecycle together with the fields
// that edge writes. Only the fields belonging to the edge may be set.
type Transition struct {
	From StatusKind
	To   Status

	Asset         *AssetMeta
	FeePaymentRef string
	Verdict       *Verdict
	Reward        *Reward
}

// Override is an audit record of an administrative status change.
type Override struct {
	ID           int64
	SubmissionID int64
	From         StatusKind
	To           StatusKind
	Reason       string
	Actor        string
	CreatedAt    time.Time
}
