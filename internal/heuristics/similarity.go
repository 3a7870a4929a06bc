package heuristics

// Address Similarity Matcher
//
// Address poisoning works by sending from an address crafted to closely
// resemble one the victim already transacted with, hoping a later copy-paste
// picks the lookalike. Detection is a fuzzy string comparison: normalized
// Levenshtein similarity between the candidate and every previously seen
// counterparty.
//
// Base58 addresses are short fixed-length identifiers, so the O(n·m) DP
// table is cheap per pair. The poisoning check runs once per prior-seen
// address, O(k²) over a window of k transactions; k is bounded by the
// configured fetch limit.

// Similarity returns the normalized edit-distance similarity of two
// strings: 1.0 for identical, 0.0 for maximally different given their
// lengths. Two empty strings are defined as identical so the ratio never
// divides by zero.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 && lb == 0 {
		return 1.0
	}

	// Full DP table over both character sequences. Insertions, deletions
	// and substitutions all cost 1.
	matrix := make([][]int, la+1)
	for i := 0; i <= la; i++ {
		matrix[i] = make([]int, lb+1)
		matrix[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if ra[i-1] == rb[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			min := matrix[i-1][j-1]
			if matrix[i][j-1] < min {
				min = matrix[i][j-1]
			}
			if matrix[i-1][j] < min {
				min = matrix[i-1][j]
			}
			matrix[i][j] = min + 1
		}
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(matrix[la][lb])/float64(maxLen)
}

// IsAddressPoisoning reports whether addr resembles any previously seen
// counterparty closely enough to classify as a poisoning pair. "Exceeds"
// is strict: a similarity exactly at the threshold does not match.
//
// Callers scan transactions in order and append each recipient to the seen
// set only after its own check, so the first-seen address of a lookalike
// cluster is never flagged — only the later imitations are.
func IsAddressPoisoning(addr string, seen []string, threshold float64) bool {
	for _, prev := range seen {
		if Similarity(addr, prev) > threshold {
			return true
		}
	}
	return false
}
