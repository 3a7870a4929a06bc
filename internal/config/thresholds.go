package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Thresholds holds the numeric policy constants driving dusting detection.
// Values are data, not code: every detector takes a Thresholds value per
// call, so tests and operators can substitute policies without touching the
// algorithms or any process-wide state.
type Thresholds struct {
	// MinTPS is the transactions-per-second rate a wallet must strictly
	// exceed before the high-rate signal fires.
	MinTPS float64 `yaml:"min_tps"`

	// MinDustTransactions is the dust-transaction count a wallet must
	// strictly exceed before the dust-volume signal fires.
	MinDustTransactions int `yaml:"min_dust_transactions"`

	// MaxDustAmountSOL is the amount (in SOL) below which a transfer
	// qualifies as dust.
	MaxDustAmountSOL float64 `yaml:"max_dust_amount_sol"`

	// MinUniqueRecipients is the distinct-recipient count a wallet must
	// strictly exceed before the scatter signal fires.
	MinUniqueRecipients int `yaml:"min_unique_recipients"`

	// MinTransactionsChecked is the number of usable transactions required
	// before any statistical signal is trusted. Below it the analysis
	// short-circuits to a LOW / zero-confidence verdict.
	MinTransactionsChecked int `yaml:"min_transactions_checked"`

	// AddressSimilarity is the edit-distance similarity ratio above which
	// two addresses are treated as a poisoning pair.
	AddressSimilarity float64 `yaml:"address_similarity"`
}

// DefaultThresholds returns the production policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTPS:                 5,
		MinDustTransactions:    9,
		MaxDustAmountSOL:       0.0001,
		MinUniqueRecipients:    9,
		MinTransactionsChecked: 10,
		AddressSimilarity:      0.8,
	}
}

// LoadThresholds reads a YAML policy file over the defaults. An empty path
// returns the defaults unchanged.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("parse thresholds file %s: %w", path, err)
	}
	if err := th.Validate(); err != nil {
		return th, err
	}
	return th, nil
}

// Validate rejects policies that would make the detectors degenerate.
func (t Thresholds) Validate() error {
	if t.MaxDustAmountSOL <= 0 {
		return fmt.Errorf("max_dust_amount_sol must be positive, got %g", t.MaxDustAmountSOL)
	}
	if t.AddressSimilarity <= 0 || t.AddressSimilarity >= 1 {
		return fmt.Errorf("address_similarity must be in (0,1), got %g", t.AddressSimilarity)
	}
	if t.MinTransactionsChecked < 1 {
		return fmt.Errorf("min_transactions_checked must be at least 1, got %d", t.MinTransactionsChecked)
	}
	return nil
}
