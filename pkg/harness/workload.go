// Package harness drives load against a notes backend and compares two of them.
package harness

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// MaxRequests is the largest count a single run accepts.
const MaxRequests = 1000

// Workload names one benchmark scenario.
type Workload string

const (
	WorkloadDB         Workload = "db"
	WorkloadPing       Workload = "ping"
	WorkloadCPU        Workload = "cpu"
	WorkloadConcurrent Workload = "concurrent"
	WorkloadJSON       Workload = "json"
)

// Request sizes issued by the harness.
const (
	CPUSize        = 35
	ConcurrentSize = 500
	JSONItems      = 100
)

// DBPause separates consecutive db batches.
const DBPause = 10 * time.Millisecond

// Request is a single HTTP call issued by the harness.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// profile describes how a workload is dispatched.
type profile struct {
	batchSize int
	pause     time.Duration
	label     func(count int) string
	build     func(target string, i int, now time.Time) (Request, error)
}

var workloads = map[Workload]profile{
	WorkloadDB: {
		batchSize: 20,
		pause:     DBPause,
		label:     func(n int) string { return fmt.Sprintf("Created %d notes", n) },
		build: func(target string, i int, now time.Time) (Request, error) {
			body, err := json.Marshal(map[string]string{
				"title":   fmt.Sprintf("Test Note %d", i+1),
				"content": fmt.Sprintf("Latency test content %d", now.UnixMilli()),
			})
			return Request{Method: http.MethodPost, URL: join(target, "/notes"), Body: body}, err
		},
	},
	WorkloadPing: {
		batchSize: 20,
		label:     func(n int) string { return fmt.Sprintf("%d ping requests completed", n) },
		build: func(target string, _ int, _ time.Time) (Request, error) {
			return Request{Method: http.MethodGet, URL: join(target, "/ping")}, nil
		},
	},
	WorkloadCPU: {
		batchSize: 5,
		label:     func(n int) string { return fmt.Sprintf("%d CPU calculations (fib %d)", n, CPUSize) },
		build: func(target string, _ int, _ time.Time) (Request, error) {
			return Request{Method: http.MethodGet, URL: join(target, fmt.Sprintf("/cpu/%d", CPUSize))}, nil
		},
	},
	WorkloadConcurrent: {
		batchSize: 3,
		label:     func(n int) string { return fmt.Sprintf("%d x %d concurrent tasks", n, ConcurrentSize) },
		build: func(target string, _ int, _ time.Time) (Request, error) {
			return Request{Method: http.MethodGet, URL: join(target, fmt.Sprintf("/concurrent/%d", ConcurrentSize))}, nil
		},
	},
	WorkloadJSON: {
		batchSize: 5,
		label:     func(n int) string { return fmt.Sprintf("%d JSON ops (%d items each)", n, JSONItems) },
		build: func(target string, _ int, _ time.Time) (Request, error) {
			body, err := json.Marshal(JSONPayload(JSONItems))
			return Request{Method: http.MethodPost, URL: join(target, "/json"), Body: body}, err
		},
	},
}

// Workloads lists every supported workload in display order.
func Workloads() []Workload {
	return []Workload{WorkloadDB, WorkloadPing, WorkloadCPU, WorkloadConcurrent, WorkloadJSON}
}

// ParseWorkload validates a workload name.
func ParseWorkload(name string) (Workload, error) {
	w := Workload(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := workloads[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWorkload, name)
	}
	return w, nil
}

// BatchSize returns how many requests of w are in flight at once.
func (w Workload) BatchSize() int {
	return workloads[w].batchSize
}

// Label describes a successful run of count requests.
func (w Workload) Label(count int) string {
	s, ok := workloads[w]
	if !ok {
		return string(w)
	}
	return s.label(count)
}

// JSONPayload generates n items shaped like a small catalogue.
func JSONPayload(n int) []map[string]any {
	items := make([]map[string]any, n)
	filler := strings.Repeat("x", 100)
	for i := range items {
		items[i] = map[string]any{
			"id":    i,
			"name":  fmt.Sprintf("Item %d", i),
			"value": rand.Float64() * 1000,
			"data":  filler,
		}
	}
	return items
}

func join(target, path string) string {
	return strings.TrimRight(target, "/") + path
}
