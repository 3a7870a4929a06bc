package heuristics

import (
	"strings"
	"testing"

	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/pkg/models"
)

func TestAnalyzeTransaction_DustTransfer(t *testing.T) {
	th := config.DefaultThresholds()

	rec := dustRecord("dustsig", 1_700_000_000, 5_000, "VictimWallet1111")
	analysis := AnalyzeTransaction(rec, nil, th)

	if analysis.Confidence != 50 {
		t.Errorf("Confidence = %d, want 50 for a lone dust amount", analysis.Confidence)
	}
	if analysis.RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %s, want MEDIUM", analysis.RiskLevel)
	}
	if analysis.IsDustingTransaction {
		t.Error("MEDIUM must not flag the transaction")
	}
	if len(analysis.SuspiciousPatterns) != 1 || !strings.HasPrefix(analysis.SuspiciousPatterns[0], "Dust amount detected") {
		t.Errorf("Expected a single dust-amount pattern, got %v", analysis.SuspiciousPatterns)
	}
	if analysis.Transaction.Type != "SEND" {
		t.Errorf("Type = %s, want SEND for a decreasing fee-payer balance", analysis.Transaction.Type)
	}
	if analysis.Transaction.Sender != "SenderWallet1111" || analysis.Transaction.Receiver != "VictimWallet1111" {
		t.Errorf("Unexpected parties: %+v", analysis.Transaction)
	}
}

func TestAnalyzeTransaction_DustWithBaitSender(t *testing.T) {
	th := config.DefaultThresholds()

	// Dust amount plus a keyword-and-emoji bait domain on the sender:
	// 50 + 30 + 20 = 100, CRITICAL and flagged.
	rec := dustRecord("dustsig", 1_700_000_000, 5_000, "VictimWallet1111")
	analysis := AnalyzeTransaction(rec, []string{"🎉free-claim.sol"}, th)

	if analysis.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100", analysis.Confidence)
	}
	if analysis.RiskLevel != models.RiskCritical {
		t.Errorf("RiskLevel = %s, want CRITICAL", analysis.RiskLevel)
	}
	if !analysis.IsDustingTransaction {
		t.Error("Expected the transaction to be flagged")
	}
	if analysis.SenderSNS == nil || !analysis.SenderSNS.HasSuspiciousPattern || !analysis.SenderSNS.ContainsEmojis {
		t.Errorf("Expected both SNS findings, got %+v", analysis.SenderSNS)
	}
	if len(analysis.SuspiciousPatterns) != 3 {
		t.Errorf("Expected 3 audit patterns, got %v", analysis.SuspiciousPatterns)
	}
}

func TestAnalyzeTransaction_TokenTransferExemption(t *testing.T) {
	th := config.DefaultThresholds()

	// A sub-dust lamport delta on an SPL transfer means nothing: the dust
	// signal is suppressed, confidence capped at 20 and the verdict LOW,
	// no matter how bad the sender's domain looks.
	rec := dustRecord("tokensig", 1_700_000_000, 5_000, "VictimWallet1111")
	rec.TokenTransfer = true
	rec.FirstProgram = models.TokenProgramID

	analysis := AnalyzeTransaction(rec, []string{"🎉free-claim.sol"}, th)

	if analysis.Confidence > 20 {
		t.Errorf("Confidence = %d, want at most 20 for a token transfer", analysis.Confidence)
	}
	if analysis.RiskLevel != models.RiskLow {
		t.Errorf("RiskLevel = %s, want LOW", analysis.RiskLevel)
	}
	if analysis.IsDustingTransaction {
		t.Error("Token transfers must never be flagged by dust heuristics")
	}
	found := false
	for _, p := range analysis.SuspiciousPatterns {
		if strings.HasPrefix(p, "Dust amount detected") {
			t.Errorf("Dust pattern must not appear for token transfers: %v", analysis.SuspiciousPatterns)
		}
		if strings.Contains(p, "Non-native asset transfer") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the non-native exemption pattern, got %v", analysis.SuspiciousPatterns)
	}
}

func TestAnalyzeTransaction_ReceiveDirection(t *testing.T) {
	th := config.DefaultThresholds()

	pre := int64(10_000_000_000)
	post := pre + 500_000_000
	rec := models.TransactionRecord{
		Signature:    "recv",
		BlockTime:    1_700_000_000,
		PreBalance:   &pre,
		PostBalance:  &post,
		AccountKeys:  []string{"SenderWallet1111", "CounterpartyWallet"},
		FirstProgram: models.SystemProgramID,
	}
	analysis := AnalyzeTransaction(rec, nil, th)
	if analysis.Transaction.Type != "RECEIVE" {
		t.Errorf("Type = %s, want RECEIVE for an increasing balance", analysis.Transaction.Type)
	}
	if analysis.Confidence != 0 || analysis.RiskLevel != models.RiskLow {
		t.Errorf("A normal-sized receive must be LOW/0, got %d/%s", analysis.Confidence, analysis.RiskLevel)
	}
}

func TestAnalyzeTransaction_MissingBalances(t *testing.T) {
	th := config.DefaultThresholds()

	// No balances on the record: amount-based signals cannot fire. The zero
	// amount must not be mistaken for dust.
	rec := models.TransactionRecord{
		Signature:    "nobalances",
		BlockTime:    1_700_000_000,
		AccountKeys:  []string{"SenderWallet1111", "CounterpartyWallet"},
		FirstProgram: models.SystemProgramID,
	}
	analysis := AnalyzeTransaction(rec, nil, th)
	if analysis.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0 without balances", analysis.Confidence)
	}
	if len(analysis.SuspiciousPatterns) != 0 {
		t.Errorf("Expected no patterns, got %v", analysis.SuspiciousPatterns)
	}
}
