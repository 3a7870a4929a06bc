package heuristics

import (
	"fmt"

	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Transaction-Mode Analysis Orchestrator
//
// Evaluates one specific transfer instead of a wallet's history. The
// dominant signal here is the transfer's own amount: a sub-dust SOL
// movement is the strongest single indicator of a dusting probe. The
// sender's name-service reputation contributes the remaining points.
//
// Non-native (SPL token) transfers are exempt from dust economics: token
// decimals make the lamport delta meaningless, so confidence is capped and
// the verdict forced to LOW.

// AnalyzeTransaction evaluates a single transaction record. senderDomains
// are the name-service names resolved for the sending address; an empty
// slice (lookup failed or no registration) simply contributes no signal.
func AnalyzeTransaction(rec models.TransactionRecord, senderDomains []string, th config.Thresholds) models.TransactionAnalysis {
	amount, _ := rec.DeltaSOL()

	direction := "RECEIVE"
	if rec.PreBalance != nil && rec.PostBalance != nil && *rec.PreBalance > *rec.PostBalance {
		direction = "SEND"
	}

	sns := EvaluateDomains(senderDomains)

	signals := SignalSet{
		DomainSuspicious: sns != nil && sns.HasSuspiciousPattern,
		DomainEmoji:      sns != nil && sns.ContainsEmojis,
		TokenTransfer:    rec.TokenTransfer,
	}
	if _, ok := rec.Delta(); ok && amount < th.MaxDustAmountSOL && !rec.TokenTransfer {
		signals.DustAmount = true
	}

	confidence := signals.Score()

	patterns := []string{}
	if signals.DustAmount {
		patterns = append(patterns, fmt.Sprintf("Dust amount detected: %g SOL", amount))
	}
	if signals.DomainSuspicious {
		patterns = append(patterns, fmt.Sprintf("Suspicious SNS name: %s", sns.Name))
	}
	if signals.DomainEmoji {
		patterns = append(patterns, "SNS contains emojis")
	}
	if signals.TokenTransfer {
		patterns = append(patterns, "Non-native asset transfer: dust heuristics not applicable")
	}

	confidence = CapTokenTransferConfidence(confidence, signals)
	level := ClassifyTransactionRisk(confidence, signals)

	return models.TransactionAnalysis{
		IsDustingTransaction: IsFlagged(level),
		Confidence:           confidence,
		Transaction: models.TransferSummary{
			Signature: rec.Signature,
			Timestamp: rec.BlockTime,
			Amount:    amount,
			Sender:    rec.Sender(),
			Receiver:  rec.Recipient(),
			Type:      direction,
		},
		SenderSNS:          sns,
		SuspiciousPatterns: patterns,
		RiskLevel:          level,
	}
}
