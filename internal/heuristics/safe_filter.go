package heuristics

import (
	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Safe-Transfer Filter
//
// Inverse view of the detectors: instead of scoring the wallet, walk its
// window and keep only the transfers that are neither dust nor address
// poisoning. Wallet UIs use this to render a cleaned history.
//
// Scanning order is significant. The seen-set of counterparty addresses
// grows as the walk proceeds and each recipient is appended only after its
// own poisoning check, so the first occurrence of a lookalike cluster
// passes and the later imitations are dropped.

// FilterSafeTransfers partitions the window into safe and filtered
// transfers. Records missing balances or a resolvable counterparty are
// filtered out — they cannot be vetted, so they are never presented as
// safe.
func FilterSafeTransfers(records []models.TransactionRecord, th config.Thresholds) models.SafeTransferReport {
	report := models.SafeTransferReport{
		SafeTransactions:  []models.TransferSummary{},
		TotalTransactions: len(records),
	}

	seen := make([]string, 0, len(records))
	for _, rec := range records {
		amount, ok := rec.DeltaSOL()
		if !ok {
			continue
		}

		counterparty := rec.Recipient()
		if counterparty == "" {
			continue
		}

		poisoning := IsAddressPoisoning(counterparty, seen, th.AddressSimilarity)
		seen = append(seen, counterparty)

		if amount < th.MaxDustAmountSOL || poisoning {
			continue
		}

		direction := "RECEIVE"
		if *rec.PreBalance > *rec.PostBalance {
			direction = "SEND"
		}
		report.SafeTransactions = append(report.SafeTransactions, models.TransferSummary{
			Signature: rec.Signature,
			Timestamp: rec.BlockTime,
			Amount:    amount,
			Sender:    rec.Sender(),
			Receiver:  counterparty,
			Type:      direction,
		})
	}

	report.SafeTransactionsCount = len(report.SafeTransactions)
	report.FilteredTransactionsCount = report.TotalTransactions - report.SafeTransactionsCount
	return report
}
