package models

// Well-known Solana program IDs used to classify instructions.
const (
	// SystemProgramID is the native system program; a first instruction
	// addressed to it marks a plain two-party SOL transfer.
	SystemProgramID = "11111111111111111111111111111111"

	// TokenProgramID is the SPL token program. Its presence in a
	// transaction's account keys or log messages marks a non-native
	// asset transfer, for which dust-amount economics do not apply.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// LamportsPerSOL converts the ledger's integer minor units to SOL.
const LamportsPerSOL = 1e9

// TransactionRecord is the parsed view of one Solana transaction that the
// detection engine consumes. It is produced by the RPC client and treated
// as read-only input everywhere else.
//
// PreBalance/PostBalance are the fee payer's (account index 0) balances in
// lamports. Nil means the RPC response lacked the field; such records are
// unusable for amount-based signals and must be skipped, never treated as
// zero.
type TransactionRecord struct {
	Signature     string   `json:"signature"`
	Slot          uint64   `json:"slot,omitempty"`
	BlockTime     int64    `json:"blockTime,omitempty"` // unix seconds, 0 = unknown
	PreBalance    *int64   `json:"preBalance,omitempty"`
	PostBalance   *int64   `json:"postBalance,omitempty"`
	AccountKeys   []string `json:"accountKeys,omitempty"`
	FirstProgram  string   `json:"firstProgram,omitempty"` // program ID of the first instruction
	TokenTransfer bool     `json:"tokenTransfer"`          // SPL token evidence from keys/logs
}

// Delta returns the absolute fee-payer balance change in lamports.
// ok is false when either balance is missing.
func (t TransactionRecord) Delta() (lamports int64, ok bool) {
	if t.PreBalance == nil || t.PostBalance == nil {
		return 0, false
	}
	d := *t.PreBalance - *t.PostBalance
	if d < 0 {
		d = -d
	}
	return d, true
}

// DeltaSOL returns the absolute fee-payer balance change converted to SOL.
func (t TransactionRecord) DeltaSOL() (amount float64, ok bool) {
	lamports, ok := t.Delta()
	if !ok {
		return 0, false
	}
	return float64(lamports) / LamportsPerSOL, true
}

// Sender returns the first account key (the fee payer / initiator).
func (t TransactionRecord) Sender() string {
	if len(t.AccountKeys) == 0 {
		return ""
	}
	return t.AccountKeys[0]
}

// Recipient returns the second account key, the counterparty of a simple
// two-party transfer. Empty when the transaction has no second key.
func (t TransactionRecord) Recipient() string {
	if len(t.AccountKeys) < 2 {
		return ""
	}
	return t.AccountKeys[1]
}

// IsSimpleTransfer reports whether the first instruction addresses the
// native system program, i.e. the record looks like a plain SOL transfer
// rather than a program invocation.
func (t TransactionRecord) IsSimpleTransfer() bool {
	return t.FirstProgram == SystemProgramID
}
