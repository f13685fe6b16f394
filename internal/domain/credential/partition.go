package credential

// PrefixLength is the number of leading symbols fixed per bucket entry.
// Lengths of one use the fast path and have no prefix.
func PrefixLength(length int) int {
	switch {
	case length < 2:
		return 0
	case length < PairPrefixThreshold:
		return 1
	default:
		return 2
	}
}

// PrefixSpace lists every prefix of the given length in enumeration order.
// Single prefixes are the edge symbols; pairs are an edge symbol followed by
// an interior symbol, first symbol major.
func PrefixSpace(prefixLength int) []string {
	switch prefixLength {
	case 1:
		out := make([]string, 0, len(EdgeSymbols))
		for i := 0; i < len(EdgeSymbols); i++ {
			out = append(out, EdgeSymbols[i:i+1])
		}
		return out
	case 2:
		out := make([]string, 0, len(EdgeSymbols)*len(InteriorSymbols))
		for i := 0; i < len(EdgeSymbols); i++ {
			for j := 0; j < len(InteriorSymbols); j++ {
				out = append(out, string([]byte{EdgeSymbols[i], InteriorSymbols[j]}))
			}
		}
		return out
	default:
		return nil
	}
}

// Partition splits a space of the given size into n contiguous buckets.
// Every bucket gets size/n items and the first size%n buckets get one extra.
// The result holds the [start, end) bounds of each bucket.
func Partition(size, n int) [][2]int {
	if n <= 0 {
		return nil
	}
	base := size / n
	extra := size % n

	bounds := make([][2]int, n)
	start := 0
	for i := 0; i < n; i++ {
		count := base
		if i < extra {
			count++
		}
		bounds[i] = [2]int{start, start + count}
		start += count
	}
	return bounds
}

// Buckets assigns the prefixes for a credential length to n workers. Buckets
// may be empty when there are more workers than prefixes.
func Buckets(length, n int) [][]string {
	space := PrefixSpace(PrefixLength(length))
	bounds := Partition(len(space), n)

	buckets := make([][]string, len(bounds))
	for i, b := range bounds {
		buckets[i] = space[b[0]:b[1]]
	}
	return buckets
}
