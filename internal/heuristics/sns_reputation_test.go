package heuristics

import "testing"

func TestHasSuspiciousKeyword(t *testing.T) {
	suspicious := []string{
		"free-airdrop-claim.sol",
		"OFFICIAL-support.sol", // matching is case-insensitive
		"walletdrain.sol",
		"usdc-bonus.sol",
	}
	for _, name := range suspicious {
		if !HasSuspiciousKeyword(name) {
			t.Errorf("Expected %q to match the dusting keyword list", name)
		}
	}

	clean := []string{
		"alice.sol",
		"treasury-ops.sol",
		"",
	}
	for _, name := range clean {
		if HasSuspiciousKeyword(name) {
			t.Errorf("Expected %q to pass the keyword check", name)
		}
	}
}

func TestContainsEmoji(t *testing.T) {
	if !ContainsEmoji("🎉lucky.sol") {
		t.Error("Expected the party popper to register as an emoji")
	}
	if !ContainsEmoji("win🚀now.sol") {
		t.Error("Expected the rocket to register as an emoji")
	}
	if ContainsEmoji("plain-ascii.sol") {
		t.Error("ASCII-only name must not register as emoji")
	}
	// Non-ASCII but outside the emoji block
	if ContainsEmoji("café.sol") {
		t.Error("Accented latin must not register as emoji")
	}
}

func TestEvaluateDomains_FirstMatchWins(t *testing.T) {
	// Scenario: a wallet holds a clean vanity name plus a classic
	// "free airdrop" bait name. The first qualifying domain is reported.
	domains := []string{"alice.sol", "free-airdrop.sol", "claim-now.sol"}

	rec := EvaluateDomains(domains)
	if rec == nil {
		t.Fatal("Expected a suspicious SNS record")
	}
	if rec.Name != "free-airdrop.sol" {
		t.Errorf("Expected first qualifying domain free-airdrop.sol, got %q", rec.Name)
	}
	if !rec.HasSuspiciousPattern {
		t.Error("Expected HasSuspiciousPattern for free-airdrop.sol")
	}
	if rec.ContainsEmojis {
		t.Error("free-airdrop.sol has no emojis")
	}
}

func TestEvaluateDomains_EmojiAndKeywordTogether(t *testing.T) {
	rec := EvaluateDomains([]string{"🎉lucky.sol"})
	if rec == nil {
		t.Fatal("Expected a suspicious SNS record for 🎉lucky.sol")
	}
	if !rec.HasSuspiciousPattern {
		t.Error("\"lucky\" is on the keyword list, expected HasSuspiciousPattern")
	}
	if !rec.ContainsEmojis {
		t.Error("Expected ContainsEmojis for 🎉lucky.sol")
	}
}

func TestEvaluateDomains_EmojiOnly(t *testing.T) {
	rec := EvaluateDomains([]string{"🌈vibes.sol"})
	if rec == nil {
		t.Fatal("Expected an SNS record for an emoji-only domain")
	}
	if rec.HasSuspiciousPattern {
		t.Error("vibes is not a dusting keyword")
	}
	if !rec.ContainsEmojis {
		t.Error("Expected ContainsEmojis")
	}
}

func TestEvaluateDomains_NoFindings(t *testing.T) {
	if rec := EvaluateDomains([]string{"alice.sol", "bob.sol"}); rec != nil {
		t.Errorf("Expected nil for clean domains, got %+v", rec)
	}
	if rec := EvaluateDomains(nil); rec != nil {
		t.Errorf("Expected nil when the wallet has no domains, got %+v", rec)
	}
}
