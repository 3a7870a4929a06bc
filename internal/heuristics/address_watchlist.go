package heuristics

import (
	"sync"
	"time"

	"github.com/rawblock/dusting-engine/pkg/models"
)

// Known-Duster Address Watchlist
//
// Concurrent-safe registry of addresses already attributed to dusting or
// poisoning campaigns. Every analyzed wallet and transaction counterparty
// is checked against it; a hit is surfaced in the API response and the
// alert stream but never alters the core confidence arithmetic — the
// scorer stays a pure function of the on-chain signals.
//
// Performance: O(1) lookup using a map-based set.
// Concurrency: sync.RWMutex allows concurrent reads on the hot path
// (checking analyses) while writes are serialized.
//
// Categories:
//   duster   — Confirmed dusting campaign source
//   poisoner — Confirmed address-poisoning source
//   scammer  — SNS-lure or drainer operator
//   service  — Known benign high-volume service (suppresses noise)

// WatchedAddress holds metadata for a monitored address.
type WatchedAddress struct {
	Address    string    `json:"address"`
	Category   string    `json:"category"` // duster/poisoner/scammer/service
	Label      string    `json:"label"`    // Human-readable name
	AddedAt    time.Time `json:"addedAt"`
	AlertLevel string    `json:"alertLevel"` // low/medium/high/critical
}

// WatchlistHit represents a match found while checking an analysis.
type WatchlistHit struct {
	Address    string `json:"address"`
	Category   string `json:"category"`
	Label      string `json:"label"`
	Role       string `json:"role"` // "subject", "sender" or "recipient"
	AlertLevel string `json:"alertLevel"`
}

// AddressWatchlist is a concurrent-safe address monitoring registry.
type AddressWatchlist struct {
	mu        sync.RWMutex
	addresses map[string]WatchedAddress
}

// NewAddressWatchlist creates an empty watchlist.
func NewAddressWatchlist() *AddressWatchlist {
	return &AddressWatchlist{
		addresses: make(map[string]WatchedAddress),
	}
}

// Add registers an address for monitoring.
func (w *AddressWatchlist) Add(addr, category, label, alertLevel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.addresses[addr] = WatchedAddress{
		Address:    addr,
		Category:   category,
		Label:      label,
		AddedAt:    time.Now(),
		AlertLevel: alertLevel,
	}
}

// Remove stops monitoring an address.
func (w *AddressWatchlist) Remove(addr string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.addresses, addr)
}

// Contains checks if an address is watchlisted (O(1)).
func (w *AddressWatchlist) Contains(addr string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, exists := w.addresses[addr]
	return exists
}

// Get returns the watchlist entry for an address.
func (w *AddressWatchlist) Get(addr string) (WatchedAddress, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, exists := w.addresses[addr]
	return entry, exists
}

// CheckWallet reports whether the analyzed wallet itself is watchlisted.
func (w *AddressWatchlist) CheckWallet(address string) []WatchlistHit {
	return w.check(address, "subject")
}

// CheckRecord scans one transaction record's parties for watchlisted
// addresses. Returns all hits (sender and recipient may both match).
func (w *AddressWatchlist) CheckRecord(rec models.TransactionRecord) []WatchlistHit {
	hits := w.check(rec.Sender(), "sender")
	hits = append(hits, w.check(rec.Recipient(), "recipient")...)
	return hits
}

func (w *AddressWatchlist) check(addr, role string) []WatchlistHit {
	if addr == "" {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	entry, exists := w.addresses[addr]
	if !exists {
		return nil
	}
	return []WatchlistHit{{
		Address:    addr,
		Category:   entry.Category,
		Label:      entry.Label,
		Role:       role,
		AlertLevel: entry.AlertLevel,
	}}
}

// Size returns the number of watched addresses.
func (w *AddressWatchlist) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.addresses)
}

// ListAll returns all watched addresses.
func (w *AddressWatchlist) ListAll() []WatchedAddress {
	w.mu.RLock()
	defer w.mu.RUnlock()

	list := make([]WatchedAddress, 0, len(w.addresses))
	for _, entry := range w.addresses {
		list = append(list, entry)
	}
	return list
}
