package heuristics

import (
	"math"
	"testing"
)

func TestSimilarity_Identity(t *testing.T) {
	addresses := []string{
		"A",
		"ABCD1234",
		"7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2",
	}
	for _, addr := range addresses {
		if got := Similarity(addr, addr); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", addr, addr, got)
		}
	}
}

func TestSimilarity_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"ABCD1234", "ABCD1235"},
		{"short", "a-much-longer-string"},
		{"", "xyz"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_SingleTrailingEdit(t *testing.T) {
	// One trailing character differs out of eight: distance 1, ratio 1 - 1/8.
	got := Similarity("ABCD1234", "ABCD1235")
	want := 0.875
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity(ABCD1234, ABCD1235) = %v, want %v", got, want)
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	// Defined as identical to avoid a zero division; callers never pass
	// two empty addresses in practice but the function must not blow up.
	got := Similarity("", "")
	if got != 1.0 || math.IsNaN(got) {
		t.Errorf("Similarity(\"\", \"\") = %v, want 1.0", got)
	}
}

func TestSimilarity_MaximallyDifferent(t *testing.T) {
	if got := Similarity("aaaa", "bbbb"); got != 0.0 {
		t.Errorf("Similarity(aaaa, bbbb) = %v, want 0.0", got)
	}
}

func TestIsAddressPoisoning_LookalikeAboveThreshold(t *testing.T) {
	seen := []string{"ABCD1234"}

	// 0.875 similarity strictly exceeds the 0.8 threshold
	if !IsAddressPoisoning("ABCD1235", seen, 0.8) {
		t.Error("Expected ABCD1235 to be classified as poisoning against ABCD1234 at threshold 0.8")
	}

	// An unrelated address stays clean
	if IsAddressPoisoning("zzzz9999", seen, 0.8) {
		t.Error("Expected zzzz9999 to pass against ABCD1234")
	}
}

func TestIsAddressPoisoning_ThresholdIsStrict(t *testing.T) {
	// Similarity exactly at the threshold must not match.
	seen := []string{"ABCD1234"}
	if IsAddressPoisoning("ABCD1235", seen, 0.875) {
		t.Error("Similarity equal to the threshold should not classify as poisoning")
	}
}

func TestIsAddressPoisoning_EmptySeenSet(t *testing.T) {
	if IsAddressPoisoning("ABCD1234", nil, 0.8) {
		t.Error("First-seen address must never be flagged")
	}
}
