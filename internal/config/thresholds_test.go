package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	if err := th.Validate(); err != nil {
		t.Fatalf("Default policy must validate: %v", err)
	}
	if th.MinTPS != 5 || th.MinDustTransactions != 9 || th.MaxDustAmountSOL != 0.0001 ||
		th.MinUniqueRecipients != 9 || th.MinTransactionsChecked != 10 || th.AddressSimilarity != 0.8 {
		t.Errorf("Unexpected defaults: %+v", th)
	}
}

func TestLoadThresholds_EmptyPath(t *testing.T) {
	th, err := LoadThresholds("")
	if err != nil {
		t.Fatalf("Empty path must yield defaults, got error: %v", err)
	}
	if th != DefaultThresholds() {
		t.Errorf("Expected defaults, got %+v", th)
	}
}

func TestLoadThresholds_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := "min_tps: 2.5\nmax_dust_amount_sol: 0.001\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("LoadThresholds: %v", err)
	}
	if th.MinTPS != 2.5 || th.MaxDustAmountSOL != 0.001 {
		t.Errorf("Overrides not applied: %+v", th)
	}
	// Unspecified keys keep their defaults
	if th.MinDustTransactions != 9 || th.MinTransactionsChecked != 10 {
		t.Errorf("Defaults lost for unspecified keys: %+v", th)
	}
}

func TestLoadThresholds_RejectsDegeneratePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("address_similarity: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadThresholds(path); err == nil {
		t.Error("Expected a validation error for similarity outside (0,1)")
	}
}

func TestLoadThresholds_MissingFile(t *testing.T) {
	if _, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Thresholds)
		wantErr bool
	}{
		{"defaults", func(*Thresholds) {}, false},
		{"zero dust threshold", func(th *Thresholds) { th.MaxDustAmountSOL = 0 }, true},
		{"similarity at one", func(th *Thresholds) { th.AddressSimilarity = 1 }, true},
		{"similarity at zero", func(th *Thresholds) { th.AddressSimilarity = 0 }, true},
		{"no history minimum", func(th *Thresholds) { th.MinTransactionsChecked = 0 }, true},
	}
	for _, tc := range cases {
		th := DefaultThresholds()
		tc.mutate(&th)
		if err := th.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
