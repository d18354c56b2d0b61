package workload

// UnitSize is the Fibonacci index computed by one concurrency unit.
const UnitSize = 25

// Fibonacci computes the n-th Fibonacci number by naive double recursion.
func Fibonacci(n int) int {
	if n <= 1 {
		return n
	}
	return Fibonacci(n-1) + Fibonacci(n-2)
}
