package harness

// Batches splits count requests into consecutive groups of at most size.
// Batches(47, 20) is [20 20 7].
func Batches(count, size int) []int {
	if count <= 0 || size <= 0 {
		return nil
	}
	out := make([]int, 0, (count+size-1)/size)
	for count > 0 {
		n := min(size, count)
		out = append(out, n)
		count -= n
	}
	return out
}
