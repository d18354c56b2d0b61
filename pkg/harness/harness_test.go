package harness_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/notebench/pkg/harness"
)

// fakeTransport records requests and answers from a per-target script.
type fakeTransport struct {
	mu       sync.Mutex
	requests []harness.Request
	status   int
	fail     map[string]error
	advance  map[string]time.Duration
	clock    *fakeClock
}

func (f *fakeTransport) Do(ctx context.Context, req harness.Request) (harness.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for prefix, err := range f.fail {
		if strings.HasPrefix(req.URL, prefix) {
			return harness.Response{}, err
		}
	}
	if f.clock != nil {
		for prefix, d := range f.advance {
			if strings.HasPrefix(req.URL, prefix) {
				f.clock.Advance(d)
			}
		}
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return harness.Response{Status: status, Body: []byte(`{}`)}, nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func noSleep(pauses *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*pauses = append(*pauses, d)
		return nil
	}
}

func TestBatches(t *testing.T) {
	assert.Equal(t, []int{20, 20, 7}, harness.Batches(47, 20))
	assert.Equal(t, []int{5}, harness.Batches(5, 5))
	assert.Equal(t, []int{3, 3, 3, 1}, harness.Batches(10, 3))
	assert.Empty(t, harness.Batches(0, 20))
}

func TestBatches_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, harness.MaxRequests).Draw(t, "count")
		size := rapid.IntRange(1, 50).Draw(t, "size")

		batches := harness.Batches(count, size)
		sum := 0
		for i, b := range batches {
			if b < 1 || b > size {
				t.Fatalf("batch %d has size %d", i, b)
			}
			if i < len(batches)-1 && b != size {
				t.Fatalf("only the last batch may be short, batch %d has %d", i, b)
			}
			sum += b
		}
		if sum != count {
			t.Fatalf("batches sum to %d, want %d", sum, count)
		}
	})
}

func TestRun_DB(t *testing.T) {
	transport := &fakeTransport{}
	var pauses []time.Duration
	r := harness.NewRunner(harness.WithTransport(transport), harness.WithSleep(noSleep(&pauses)))

	res, err := r.Run(context.Background(), "http://localhost:9000/api/", harness.WorkloadDB, 47)
	require.NoError(t, err)

	assert.Equal(t, 47, res.Count)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, 0, res.NonOK)
	assert.Equal(t, "Created 47 notes", res.Label)
	assert.Equal(t, []time.Duration{harness.DBPause, harness.DBPause}, pauses)

	require.Equal(t, 47, transport.count())
	titles := make(map[string]bool)
	for _, req := range transport.requests {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "http://localhost:9000/api/notes", req.URL)
		var body map[string]string
		require.NoError(t, json.Unmarshal(req.Body, &body))
		assert.True(t, strings.HasPrefix(body["content"], "Latency test content "))
		titles[body["title"]] = true
	}
	assert.True(t, titles["Test Note 1"])
	assert.True(t, titles["Test Note 47"])
	assert.Len(t, titles, 47)
}

// gateTransport holds every request until the rest of its batch has
// arrived, and records the peak number of requests in flight.
type gateTransport struct {
	mu       sync.Mutex
	size     int
	total    int
	arrived  int
	inflight int
	peak     int
}

func (g *gateTransport) Do(ctx context.Context, _ harness.Request) (harness.Response, error) {
	g.mu.Lock()
	idx := g.arrived
	g.arrived++
	g.inflight++
	g.peak = max(g.peak, g.inflight)
	want := min((idx/g.size+1)*g.size, g.total)
	g.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g.mu.Lock()
		done := g.arrived >= want
		g.mu.Unlock()
		if done || ctx.Err() != nil {
			break
		}
		time.Sleep(100 * time.Microsecond)
	}

	g.mu.Lock()
	g.inflight--
	g.mu.Unlock()
	return harness.Response{Status: http.StatusOK, Body: []byte(`{}`)}, nil
}

func TestRun_BatchRunsConcurrently(t *testing.T) {
	want := map[harness.Workload]int{
		harness.WorkloadDB:         20,
		harness.WorkloadPing:       20,
		harness.WorkloadCPU:        5,
		harness.WorkloadConcurrent: 3,
		harness.WorkloadJSON:       5,
	}
	for _, w := range harness.Workloads() {
		t.Run(string(w), func(t *testing.T) {
			require.Equal(t, want[w], w.BatchSize())

			gate := &gateTransport{size: w.BatchSize(), total: 47}
			var pauses []time.Duration
			r := harness.NewRunner(harness.WithTransport(gate), harness.WithSleep(noSleep(&pauses)))

			res, err := r.Run(context.Background(), "http://x/api", w, 47)
			require.NoError(t, err)
			assert.Equal(t, 47, res.Count)
			assert.Equal(t, w.BatchSize(), gate.peak, "a whole batch is in flight at once and never more")
			assert.Zero(t, gate.inflight)
		})
	}
}

func TestRun_PauseOnlyForDB(t *testing.T) {
	for _, w := range []harness.Workload{harness.WorkloadPing, harness.WorkloadCPU, harness.WorkloadConcurrent, harness.WorkloadJSON} {
		t.Run(string(w), func(t *testing.T) {
			var pauses []time.Duration
			r := harness.NewRunner(harness.WithTransport(&fakeTransport{}), harness.WithSleep(noSleep(&pauses)))

			res, err := r.Run(context.Background(), "http://x/api", w, 25)
			require.NoError(t, err)
			assert.Equal(t, 25, res.Count)
			assert.Empty(t, pauses)
		})
	}
}

func TestRun_RequestShapes(t *testing.T) {
	tests := []struct {
		workload harness.Workload
		method   string
		url      string
		label    string
	}{
		{harness.WorkloadPing, http.MethodGet, "http://x/api/ping", "2 ping requests completed"},
		{harness.WorkloadCPU, http.MethodGet, "http://x/api/cpu/35", "2 CPU calculations (fib 35)"},
		{harness.WorkloadConcurrent, http.MethodGet, "http://x/api/concurrent/500", "2 x 500 concurrent tasks"},
		{harness.WorkloadJSON, http.MethodPost, "http://x/api/json", "2 JSON ops (100 items each)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.workload), func(t *testing.T) {
			transport := &fakeTransport{}
			r := harness.NewRunner(harness.WithTransport(transport))

			res, err := r.Run(context.Background(), "http://x/api", tt.workload, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.Label)

			require.Equal(t, 2, transport.count())
			assert.Equal(t, tt.method, transport.requests[0].Method)
			assert.Equal(t, tt.url, transport.requests[0].URL)
		})
	}
}

func TestRun_JSONPayload(t *testing.T) {
	transport := &fakeTransport{}
	r := harness.NewRunner(harness.WithTransport(transport))

	_, err := r.Run(context.Background(), "http://x/api", harness.WorkloadJSON, 1)
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(transport.requests[0].Body, &items))
	require.Len(t, items, harness.JSONItems)
	assert.Equal(t, "Item 7", items[7]["name"])
	assert.Len(t, items[0]["data"], 100)
	value := items[3]["value"].(float64)
	assert.True(t, value >= 0 && value < 1000)
}

func TestRun_InvalidCount(t *testing.T) {
	for _, count := range []int{0, -1, harness.MaxRequests + 1} {
		transport := &fakeTransport{}
		r := harness.NewRunner(harness.WithTransport(transport))

		_, err := r.Run(context.Background(), "http://x/api", harness.WorkloadPing, count)
		assert.ErrorIs(t, err, harness.ErrInvalidCount)
		assert.Zero(t, transport.count(), "no request may be sent for count %d", count)
	}
}

func TestRun_MaxRequests(t *testing.T) {
	transport := &fakeTransport{}
	r := harness.NewRunner(harness.WithTransport(transport))

	res, err := r.Run(context.Background(), "http://x/api", harness.WorkloadPing, harness.MaxRequests)
	require.NoError(t, err)
	assert.Equal(t, harness.MaxRequests, res.Count)
	assert.Equal(t, harness.MaxRequests, transport.count())
}

func TestRun_UnknownWorkload(t *testing.T) {
	_, err := harness.ParseWorkload("disk")
	assert.ErrorIs(t, err, harness.ErrUnknownWorkload)

	w, err := harness.ParseWorkload(" CPU ")
	require.NoError(t, err)
	assert.Equal(t, harness.WorkloadCPU, w)
}

func TestRun_NonOKIsCounted(t *testing.T) {
	transport := &fakeTransport{status: http.StatusInternalServerError}
	r := harness.NewRunner(harness.WithTransport(transport))

	res, err := r.Run(context.Background(), "http://x/api", harness.WorkloadPing, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, res.NonOK)
	assert.Equal(t, 30, res.Count)
}

func TestRun_TransportFailureAborts(t *testing.T) {
	transport := &fakeTransport{fail: map[string]error{"http://down": errors.New("connection refused")}}
	r := harness.NewRunner(harness.WithTransport(transport))

	_, err := r.Run(context.Background(), "http://down/api", harness.WorkloadDB, 100)
	require.Error(t, err)

	var terr *harness.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "http://down/api", terr.Target)
	assert.Contains(t, err.Error(), "make sure the service at http://down/api is running")
	assert.LessOrEqual(t, transport.count(), harness.WorkloadDB.BatchSize(), "later batches must not be sent")
}

func TestRun_Elapsed(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{clock: clock, advance: map[string]time.Duration{"http://x": 1500 * time.Microsecond}}
	r := harness.NewRunner(harness.WithTransport(transport), harness.WithClock(clock.Now))

	res, err := r.Run(context.Background(), "http://x/api", harness.WorkloadPing, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.ElapsedMS)
}

func TestDecide(t *testing.T) {
	v, margin := harness.Decide(120, 150)
	assert.Equal(t, harness.VerdictFirst, v)
	assert.Equal(t, int64(30), margin)

	v, margin = harness.Decide(200, 150)
	assert.Equal(t, harness.VerdictSecond, v)
	assert.Equal(t, int64(50), margin)

	v, margin = harness.Decide(150, 150)
	assert.Equal(t, harness.VerdictTie, v)
	assert.Zero(t, margin)
}

func TestCompare(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{clock: clock, advance: map[string]time.Duration{
		"http://first":  120 * time.Millisecond,
		"http://second": 150 * time.Millisecond,
	}}
	r := harness.NewRunner(harness.WithTransport(transport), harness.WithClock(clock.Now))

	c, err := r.Compare(context.Background(), "http://first/api", "http://second/api", harness.WorkloadPing, 1)
	require.NoError(t, err)
	require.True(t, c.Decided)
	assert.Equal(t, harness.VerdictFirst, c.Verdict)
	assert.Equal(t, int64(30), c.MarginMS)
	assert.Equal(t, int64(120), c.First.Result.ElapsedMS)
	assert.Equal(t, int64(150), c.Second.Result.ElapsedMS)
}

func TestCompare_IsolatesFailures(t *testing.T) {
	transport := &fakeTransport{fail: map[string]error{"http://first": errors.New("connection refused")}}
	r := harness.NewRunner(harness.WithTransport(transport))

	c, err := r.Compare(context.Background(), "http://first/api", "http://second/api", harness.WorkloadCPU, 4)
	require.NoError(t, err)
	assert.False(t, c.Decided)
	assert.Error(t, c.First.Err)
	require.NoError(t, c.Second.Err)
	assert.Equal(t, 4, c.Second.Result.Count)
}

func TestCompare_RejectsBeforeSending(t *testing.T) {
	transport := &fakeTransport{}
	r := harness.NewRunner(harness.WithTransport(transport))

	_, err := r.Compare(context.Background(), "http://a", "http://b", harness.WorkloadDB, 5000)
	assert.ErrorIs(t, err, harness.ErrInvalidCount)
	assert.Zero(t, transport.count())
}
