package heuristics

import (
	"strings"

	"github.com/rawblock/dusting-engine/pkg/models"
)

// SNS Domain Reputation Checker
//
// Dusting campaigns register human-readable name-service domains on their
// source wallets so the victim's wallet UI renders an enticing label
// ("free-airdrop-claim.sol") instead of a base58 string. Two independent
// checks flag such names:
//
//  1. Case-insensitive substring match against a fixed keyword table
//     spanning the lure categories observed in live campaigns.
//  2. Pictographic emoji glyphs (U+1F300–U+1F9FF), which legitimate
//     registrations rarely carry but bait names use for attention.
//
// A name may trigger neither, either, or both.

// snsDustingKeywords is the known-bad substring table. Matching is
// case-insensitive; entries are stored lowercase.
var snsDustingKeywords = []string{
	// Gambling/Casino related
	"flip.gg", "casino", "bet", "gambling", "slot", "poker", "roulette", "jackpot", "win",
	"lucky", "fortune", "chance", "dice", "card", "game", "play", "spin", "roll",

	// Airdrop/Free token related
	"airdrop", "free", "claim", "bonus", "reward", "giveaway", "gift", "prize", "token",
	"drop", "distribution", "whitelist", "presale", "ico", "ido", "launch", "mint",

	// Scam indicators
	"verify", "validation", "confirm", "secure", "wallet", "connect", "sign", "approve",
	"update", "upgrade", "maintenance", "support", "help", "assist", "recover", "restore",

	// Urgency/Time pressure
	"hurry", "limited", "expire", "ending", "last", "final", "urgent", "immediate",
	"now", "today", "tonight", "soon", "quick", "fast", "instant", "rush",

	// Financial incentives
	"profit", "earn", "income", "revenue", "dividend", "interest", "yield", "return",
	"investment", "trading", "market", "price", "value", "worth", "rich", "wealth",

	// Suspicious actions
	"click", "tap", "press", "enter", "submit", "send", "transfer", "move", "swap",
	"exchange", "convert", "bridge", "cross", "migrate", "import", "export",

	// Common crypto-asset bait
	"eth", "ethereum", "btc", "bitcoin", "crypto", "defi", "nft",
	"blockchain", "finance",
}

// HasSuspiciousKeyword reports whether the domain name contains any entry
// of the known-bad keyword table, ignoring case.
func HasSuspiciousKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range snsDustingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ContainsEmoji reports whether the name carries any code point in the
// pictographic emoji range U+1F300–U+1F9FF.
func ContainsEmoji(name string) bool {
	for _, r := range name {
		if r >= 0x1F300 && r <= 0x1F9FF {
			return true
		}
	}
	return false
}

// EvaluateDomains selects at most one suspicious domain from the names
// resolved for an address. Names are checked in input order and the FIRST
// one triggering either check wins; later, possibly worse, matches are
// deliberately ignored to keep the selection deterministic and cheap.
// Returns nil when no name qualifies — including the empty input, so a
// missing or failed domain lookup never blocks the rest of the analysis.
func EvaluateDomains(domains []string) *models.SNSRecord {
	for _, domain := range domains {
		keyword := HasSuspiciousKeyword(domain)
		emoji := ContainsEmoji(domain)
		if !keyword && !emoji {
			continue
		}
		return &models.SNSRecord{
			Name:                 domain,
			HasSuspiciousPattern: keyword,
			ContainsEmojis:       emoji,
		}
	}
	return nil
}
