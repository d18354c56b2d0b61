// Package workload holds the synthetic benchmark workloads and the two
// execution models the backends are compared on.
//
// Goroutines runs each request on its own goroutine and fans units of work
// out to fresh goroutines. EventLoop funnels all compute through a single
// worker goroutine, the way a single-threaded runtime would.
package workload
