package models

// Invoice is the deterministic payment target for one submission.
type Invoice struct {
	SubmissionID int64
	// Amount is expressed in the ledger's smallest unit (e8s).
	Amount     uint64
	Memo       uint64
	Subaccount []byte
}

// Payment is a settled transfer as reported by the ledger.
type Payment struct {
	// Reference is the ledger's identifier for the transfer (block index, tx hash).
	Reference string
	Amount    uint64
	Memo      uint64
	From      string
}
