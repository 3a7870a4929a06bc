package heuristics

import (
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Risk Scorer
//
// Pure function from a set of independent detector signals to a confidence
// integer and a four-tier risk label.
//
// Scoring is additive; every fired signal contributes its points and the
// sum is reported as computed. No cap is applied at summation: the wallet
// table's theoretical maximum is 30+20+40+20+10 = 120, and clipping it
// would falsify the audit trail relative to the listed patterns.
//
// Tier classification is a first-match walk over an ordered decision
// table, keeping the ordering invariant explicit rather than buried in
// nested conditionals.

// Signal point weights.
const (
	PointsSuspiciousSNS    = 30 // domain name matches a known dusting keyword
	PointsSNSEmoji         = 20 // domain name contains emoji glyphs
	PointsHighTPS          = 40 // transaction rate exceeds threshold
	PointsHighDustCount    = 20 // dust-transaction count exceeds threshold
	PointsUniqueRecipients = 10 // unique-recipient count exceeds threshold
	PointsDustAmount       = 50 // transaction-mode: own amount below dust threshold
)

// tokenTransferConfidenceCap bounds the confidence of non-native asset
// transfers, whose dust economics this model does not cover.
const tokenTransferConfidenceCap = 20

// SignalSet holds the independent boolean outputs of each detector for one
// evaluation. It exists only for the duration of the evaluation and is
// never persisted.
type SignalSet struct {
	DomainSuspicious     bool // SNS name matched the keyword table
	DomainEmoji          bool // SNS name contains emoji glyphs
	HighTPS              bool // wallet mode: TPS strictly above threshold
	HighDustCount        bool // wallet mode: dust count strictly above threshold
	HighUniqueRecipients bool // wallet mode: recipient count strictly above threshold
	DustAmount           bool // transaction mode: amount below dust threshold
	TokenTransfer        bool // transaction mode: non-native asset transfer
}

// Score sums the points of every fired signal.
func (s SignalSet) Score() int {
	score := 0
	if s.DomainSuspicious {
		score += PointsSuspiciousSNS
	}
	if s.DomainEmoji {
		score += PointsSNSEmoji
	}
	if s.HighTPS {
		score += PointsHighTPS
	}
	if s.HighDustCount {
		score += PointsHighDustCount
	}
	if s.HighUniqueRecipients {
		score += PointsUniqueRecipients
	}
	if s.DustAmount {
		score += PointsDustAmount
	}
	return score
}

// riskTier pairs a predicate with the level it selects. Tables are walked
// in order and the first matching row wins; the LOW default has no row.
type riskTier struct {
	match func(confidence int, s SignalSet) bool
	level models.RiskLevel
}

// walletRiskTiers require the rate or dust-volume signal alongside the
// confidence floor, biasing wallet verdicts toward fewer false positives.
var walletRiskTiers = []riskTier{
	{func(c int, s SignalSet) bool { return c >= 80 && s.HighTPS && s.HighDustCount }, models.RiskCritical},
	{func(c int, s SignalSet) bool { return c >= 60 && (s.HighTPS || s.HighDustCount) }, models.RiskHigh},
	{func(c int, s SignalSet) bool { return c >= 30 && (s.HighTPS || s.HighDustCount) }, models.RiskMedium},
}

// transactionRiskTiers classify a single transfer on confidence alone;
// rate statistics do not exist for one record.
var transactionRiskTiers = []riskTier{
	{func(c int, _ SignalSet) bool { return c >= 80 }, models.RiskCritical},
	{func(c int, _ SignalSet) bool { return c >= 60 }, models.RiskHigh},
	{func(c int, _ SignalSet) bool { return c >= 30 }, models.RiskMedium},
}

func classify(tiers []riskTier, confidence int, s SignalSet) models.RiskLevel {
	for _, tier := range tiers {
		if tier.match(confidence, s) {
			return tier.level
		}
	}
	return models.RiskLow
}

// ClassifyWalletRisk maps a wallet-mode confidence and signal set to its
// risk tier.
func ClassifyWalletRisk(confidence int, s SignalSet) models.RiskLevel {
	return classify(walletRiskTiers, confidence, s)
}

// ClassifyTransactionRisk maps a transaction-mode confidence to its risk
// tier. Non-native asset transfers are forced to LOW regardless of the
// other signals.
func ClassifyTransactionRisk(confidence int, s SignalSet) models.RiskLevel {
	if s.TokenTransfer {
		return models.RiskLow
	}
	return classify(transactionRiskTiers, confidence, s)
}

// CapTokenTransferConfidence applies the non-native transfer ceiling.
func CapTokenTransferConfidence(confidence int, s SignalSet) int {
	if s.TokenTransfer && confidence > tokenTransferConfidenceCap {
		return tokenTransferConfidenceCap
	}
	return confidence
}

// IsFlagged reports the final boolean verdict: only HIGH and CRITICAL
// flag the subject. MEDIUM is reported but never flags.
func IsFlagged(level models.RiskLevel) bool {
	return level == models.RiskHigh || level == models.RiskCritical
}
