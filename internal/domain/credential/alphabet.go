package credential

const (
	// EdgeSymbols may appear in the first and last position of a credential
	EdgeSymbols = "56789"

	// InteriorSymbols may appear anywhere between the first and last position
	InteriorSymbols = "56789."

	// MinWorkers and MaxWorkers bound the size of a search worker pool
	MinWorkers = 2
	MaxWorkers = 8

	// PairPrefixThreshold is the first credential length partitioned by
	// two-symbol prefixes instead of single symbols
	PairPrefixThreshold = 6

	// MaxCredentialLength is the longest credential whose whole candidate
	// space (25 * 6^(L-2)) still fits an int64 counter
	MaxCredentialLength = 24
)

// IsWellFormed reports whether s could be a credential of the given length
func IsWellFormed(s string, length int) bool {
	if length < 1 || len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		symbols := InteriorSymbols
		if i == 0 || i == len(s)-1 {
			symbols = EdgeSymbols
		}
		if !containsByte(symbols, s[i]) {
			return false
		}
	}
	return true
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}
