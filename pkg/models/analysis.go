package models

// RiskLevel is the four-tier verdict label attached to every analysis.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// SNSRecord describes the single suspicious name-service domain selected
// for an address. Nil wherever no domain qualified.
type SNSRecord struct {
	Name                 string `json:"name"`
	HasSuspiciousPattern bool   `json:"hasSuspiciousPattern"`
	ContainsEmojis       bool   `json:"containsEmojis"`
}

// WalletMetrics is the volume/rate snapshot computed over one wallet's
// recent transaction window.
type WalletMetrics struct {
	TPS                      float64    `json:"tps"`
	DustTransactions         int        `json:"dustTransactions"`
	TotalTransactionsChecked int        `json:"totalTransactionsChecked"`
	UniqueRecipients         int        `json:"uniqueRecipients"`
	AverageDustAmount        float64    `json:"averageDustAmount"` // SOL
	SuspiciousSNS            *SNSRecord `json:"suspiciousSNS"`
}

// WalletAnalysis is the wallet-mode verdict. Constructed once per request
// and never mutated afterwards.
type WalletAnalysis struct {
	Address            string        `json:"address"`
	IsDustingWallet    bool          `json:"isDustingWallet"`
	Confidence         int           `json:"confidence"`
	Metrics            WalletMetrics `json:"metrics"`
	SuspiciousPatterns []string      `json:"suspiciousPatterns"`
	RiskLevel          RiskLevel     `json:"riskLevel"`
}

// TransferSummary is the flat description of a single transfer included in
// transaction-mode verdicts and safe-transfer reports.
type TransferSummary struct {
	Signature string  `json:"signature"`
	Timestamp int64   `json:"timestamp"`
	Amount    float64 `json:"amount"` // SOL
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
	Type      string  `json:"type"` // "SEND" or "RECEIVE"
}

// TransactionAnalysis is the transaction-mode verdict.
type TransactionAnalysis struct {
	IsDustingTransaction bool            `json:"isDustingTransaction"`
	Confidence           int             `json:"confidence"`
	Transaction          TransferSummary `json:"transaction"`
	SenderSNS            *SNSRecord      `json:"senderSNS"`
	SuspiciousPatterns   []string        `json:"suspiciousPatterns"`
	RiskLevel            RiskLevel       `json:"riskLevel"`
}

// SafeTransferReport lists the transfers in a wallet's window that survive
// the dust and address-poisoning filters.
type SafeTransferReport struct {
	SafeTransactions          []TransferSummary `json:"safeTransactions"`
	TotalTransactions         int               `json:"totalTransactions"`
	SafeTransactionsCount     int               `json:"safeTransactionsCount"`
	FilteredTransactionsCount int               `json:"filteredTransactionsCount"`
}
