package heuristics

import (
	"testing"

	"github.com/rawblock/dusting-engine/pkg/models"
)

func TestAddressWatchlist_AddRemove(t *testing.T) {
	wl := NewAddressWatchlist()

	wl.Add("DusterWallet1111", "duster", "March campaign source", "high")
	if !wl.Contains("DusterWallet1111") {
		t.Error("Expected the address to be watchlisted after Add")
	}
	if wl.Size() != 1 {
		t.Errorf("Size = %d, want 1", wl.Size())
	}

	entry, ok := wl.Get("DusterWallet1111")
	if !ok || entry.Category != "duster" || entry.Label != "March campaign source" {
		t.Errorf("Get returned %+v, %v", entry, ok)
	}
	if entry.AddedAt.IsZero() {
		t.Error("AddedAt must be stamped on insert")
	}

	wl.Remove("DusterWallet1111")
	if wl.Contains("DusterWallet1111") {
		t.Error("Expected the address to be gone after Remove")
	}
	if wl.Size() != 0 {
		t.Errorf("Size = %d, want 0", wl.Size())
	}
}

func TestAddressWatchlist_AddOverwrites(t *testing.T) {
	wl := NewAddressWatchlist()
	wl.Add("DusterWallet1111", "duster", "old label", "low")
	wl.Add("DusterWallet1111", "poisoner", "reclassified", "critical")

	if wl.Size() != 1 {
		t.Errorf("Size = %d, want 1 after re-adding the same address", wl.Size())
	}
	entry, _ := wl.Get("DusterWallet1111")
	if entry.Category != "poisoner" || entry.AlertLevel != "critical" {
		t.Errorf("Expected the newer entry to win, got %+v", entry)
	}
}

func TestAddressWatchlist_CheckWallet(t *testing.T) {
	wl := NewAddressWatchlist()
	wl.Add("DusterWallet1111", "duster", "campaign source", "high")

	hits := wl.CheckWallet("DusterWallet1111")
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].Role != "subject" || hits[0].Category != "duster" {
		t.Errorf("Unexpected hit: %+v", hits[0])
	}

	if hits := wl.CheckWallet("CleanWallet11111"); len(hits) != 0 {
		t.Errorf("Expected no hits for a clean wallet, got %+v", hits)
	}
	if hits := wl.CheckWallet(""); len(hits) != 0 {
		t.Errorf("Empty address must never hit, got %+v", hits)
	}
}

func TestAddressWatchlist_CheckRecord(t *testing.T) {
	wl := NewAddressWatchlist()
	wl.Add("DusterWallet1111", "duster", "campaign source", "high")
	wl.Add("VictimWallet1111", "service", "known exchange", "low")

	rec := models.TransactionRecord{
		Signature:    "sig",
		AccountKeys:  []string{"DusterWallet1111", "VictimWallet1111"},
		FirstProgram: models.SystemProgramID,
	}

	hits := wl.CheckRecord(rec)
	if len(hits) != 2 {
		t.Fatalf("Expected hits for both parties, got %+v", hits)
	}
	if hits[0].Role != "sender" || hits[0].Address != "DusterWallet1111" {
		t.Errorf("First hit should be the sender, got %+v", hits[0])
	}
	if hits[1].Role != "recipient" || hits[1].Address != "VictimWallet1111" {
		t.Errorf("Second hit should be the recipient, got %+v", hits[1])
	}
}

func TestAddressWatchlist_ListAll(t *testing.T) {
	wl := NewAddressWatchlist()
	wl.Add("A1", "duster", "", "high")
	wl.Add("A2", "scammer", "", "medium")

	list := wl.ListAll()
	if len(list) != 2 {
		t.Errorf("ListAll returned %d entries, want 2", len(list))
	}
}
