package heuristics

import (
	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Transaction Metrics Aggregator
//
// Reduces a wallet's recent transaction window (newest-first, as returned
// by the ledger's history query) into the volume/rate statistics the risk
// scorer consumes. Records with missing fields are excluded from the
// affected metric only — a partial record never fails the batch.

// AggregateMetrics computes the wallet metrics snapshot for one window.
// The SuspiciousSNS field is left nil; domain reputation is an independent
// signal merged by the orchestrator.
func AggregateMetrics(records []models.TransactionRecord, th config.Thresholds) models.WalletMetrics {
	metrics := models.WalletMetrics{
		TotalTransactionsChecked: len(records),
	}
	if len(records) == 0 {
		return metrics
	}

	metrics.TPS = transactionsPerSecond(records)

	var dustTotal float64
	for _, rec := range records {
		amount, ok := rec.DeltaSOL()
		if !ok {
			continue // unusable for amount-based signals, not counted either way
		}
		if amount < th.MaxDustAmountSOL {
			metrics.DustTransactions++
			dustTotal += amount
		}
	}
	if metrics.DustTransactions > 0 {
		metrics.AverageDustAmount = dustTotal / float64(metrics.DustTransactions)
	}

	metrics.UniqueRecipients = uniqueRecipients(records)

	return metrics
}

// transactionsPerSecond divides the window size by the elapsed seconds
// between the newest and oldest block times. Defined as 0 rather than
// infinite when either endpoint time is missing or the span is not
// strictly positive.
func transactionsPerSecond(records []models.TransactionRecord) float64 {
	newest := records[0].BlockTime
	oldest := records[len(records)-1].BlockTime
	if newest == 0 || oldest == 0 {
		return 0
	}
	elapsed := newest - oldest
	if elapsed <= 0 {
		return 0
	}
	return float64(len(records)) / float64(elapsed)
}

// uniqueRecipients counts distinct second-position account keys across the
// records that look like simple two-party transfers. Program-invoking
// transactions and records without a resolvable second key are excluded.
func uniqueRecipients(records []models.TransactionRecord) int {
	recipients := make(map[string]struct{})
	for _, rec := range records {
		if !rec.IsSimpleTransfer() {
			continue
		}
		to := rec.Recipient()
		if to == "" {
			continue
		}
		recipients[to] = struct{}{}
	}
	return len(recipients)
}
