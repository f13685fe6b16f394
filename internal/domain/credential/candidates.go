package credential

import "iter"

// FastPathCandidates yields the five one-symbol credentials in order
func FastPathCandidates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := 0; i < len(EdgeSymbols); i++ {
			if !yield(EdgeSymbols[i : i+1]) {
				return
			}
		}
	}
}

// Candidates yields every credential of the given length that starts with one
// of the prefixes, in a fixed order:
//
//	for each prefix
//	  for each last symbol in 5..9
//	    for each interior combination, as a radix-6 counter whose
//	    least significant digit is the leftmost interior position
//
// The sequence depends only on its arguments.
func Candidates(prefixes []string, length int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, prefix := range prefixes {
			if len(prefix) >= length {
				continue
			}
			if !enumerate(prefix, length, yield) {
				return
			}
		}
	}
}

func enumerate(prefix string, length int, yield func(string) bool) bool {
	buf := make([]byte, length)
	copy(buf, prefix)

	interiorStart := len(prefix)
	interiorLen := length - interiorStart - 1
	combos := InteriorCombinations(interiorLen)
	radix := int64(len(InteriorSymbols))

	for l := 0; l < len(EdgeSymbols); l++ {
		buf[length-1] = EdgeSymbols[l]

		for combo := int64(0); combo < combos; combo++ {
			digits := combo
			for pos := interiorStart; pos < length-1; pos++ {
				buf[pos] = InteriorSymbols[digits%radix]
				digits /= radix
			}
			if !yield(string(buf)) {
				return false
			}
		}
	}
	return true
}

// InteriorCombinations is 6^n, the number of fillings of n interior positions
func InteriorCombinations(n int) int64 {
	total := int64(1)
	for i := 0; i < n; i++ {
		total *= int64(len(InteriorSymbols))
	}
	return total
}

// SpaceSize counts the candidates that start with one of the prefixes
func SpaceSize(prefixes []string, length int) int64 {
	var total int64
	for _, prefix := range prefixes {
		if len(prefix) >= length {
			continue
		}
		total += int64(len(EdgeSymbols)) * InteriorCombinations(length-len(prefix)-1)
	}
	return total
}
