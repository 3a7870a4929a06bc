package heuristics

import (
	"fmt"

	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Wallet-Mode Analysis Orchestrator
//
// Composes the independent detectors — domain reputation, transaction
// metrics, risk scoring — over one address's recent history and assembles
// the public verdict. Stateless: everything is a pure function over the
// records and thresholds passed in, so re-running on identical inputs
// yields an identical result.

// AnalyzeWallet evaluates one wallet's transaction window.
//
// domains are the name-service names resolved for the address (possibly
// empty when the lookup failed — absence of reputation data never blocks
// the analysis). records is the newest-first transaction window fetched
// from the ledger, already filtered to successfully parsed entries.
func AnalyzeWallet(address string, domains []string, records []models.TransactionRecord, th config.Thresholds) models.WalletAnalysis {
	sns := EvaluateDomains(domains)

	signals := SignalSet{
		DomainSuspicious: sns != nil && sns.HasSuspiciousPattern,
		DomainEmoji:      sns != nil && sns.ContainsEmojis,
	}

	// Too few usable transactions: the statistics are not meaningful, so
	// short-circuit to a LOW / zero-confidence verdict. Domain findings
	// were computed independently and still ride along in the metrics.
	if len(records) < th.MinTransactionsChecked {
		return models.WalletAnalysis{
			Address:         address,
			IsDustingWallet: false,
			Confidence:      0,
			Metrics: models.WalletMetrics{
				TotalTransactionsChecked: len(records),
				SuspiciousSNS:            sns,
			},
			SuspiciousPatterns: []string{},
			RiskLevel:          models.RiskLow,
		}
	}

	metrics := AggregateMetrics(records, th)
	metrics.SuspiciousSNS = sns

	signals.HighTPS = metrics.TPS > th.MinTPS
	signals.HighDustCount = metrics.DustTransactions > th.MinDustTransactions
	signals.HighUniqueRecipients = metrics.UniqueRecipients > th.MinUniqueRecipients

	confidence := signals.Score()

	// One audit-trail line per fired signal, in fixed evaluation order.
	patterns := []string{}
	if signals.DomainSuspicious {
		patterns = append(patterns, fmt.Sprintf("Suspicious SNS name: %s", sns.Name))
	}
	if signals.DomainEmoji {
		patterns = append(patterns, "SNS contains emojis")
	}
	if signals.HighTPS {
		patterns = append(patterns, fmt.Sprintf("High TPS detected: %.2f", metrics.TPS))
	}
	if signals.HighDustCount {
		patterns = append(patterns, fmt.Sprintf("High number of dust transactions: %d", metrics.DustTransactions))
	}
	if signals.HighUniqueRecipients {
		patterns = append(patterns, fmt.Sprintf("Multiple unique recipients: %d", metrics.UniqueRecipients))
	}

	level := ClassifyWalletRisk(confidence, signals)

	return models.WalletAnalysis{
		Address:            address,
		IsDustingWallet:    IsFlagged(level),
		Confidence:         confidence,
		Metrics:            metrics,
		SuspiciousPatterns: patterns,
		RiskLevel:          level,
	}
}
