package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/notebench/pkg/harness"
)

func result(target string, ms int64) *harness.Result {
	return &harness.Result{
		Workload:  harness.WorkloadPing,
		Target:    target,
		ElapsedMS: ms,
		Count:     10,
		Batches:   1,
		Label:     harness.WorkloadPing.Label(10),
	}
}

func TestVerdict(t *testing.T) {
	c := harness.Comparison{
		First:  harness.Outcome{Result: result("a", 120)},
		Second: harness.Outcome{Result: result("b", 150)},
	}
	c.Verdict, c.MarginMS = harness.Decide(120, 150)
	c.Decided = true
	assert.Equal(t, "🏆 Node wins! 30ms faster", Verdict(c, "Node", "Go"))

	c.Verdict, c.MarginMS = harness.Decide(150, 120)
	assert.Equal(t, "🏆 Go wins! 30ms faster", Verdict(c, "Node", "Go"))

	c.First.Result = result("a", 150)
	c.Verdict, c.MarginMS = harness.Decide(150, 150)
	assert.Equal(t, "🤝 It's a tie! Both took 150ms", Verdict(c, "Node", "Go"))

	c.Decided = false
	assert.Empty(t, Verdict(c, "Node", "Go"))
}

func TestResult(t *testing.T) {
	r := *result("http://localhost:9000/api", 42)
	r.NonOK = 3
	out := Result("go", r)

	assert.Contains(t, out, "42 ms")
	assert.Contains(t, out, "10 ping requests completed")
	assert.Contains(t, out, "3 non-2xx responses")
}

func TestError_Hint(t *testing.T) {
	err := &harness.TransportError{Target: "http://localhost:9001/api", Err: errors.New("connection refused")}
	out := Error("eventloop", "http://localhost:9001/api", err)

	assert.Contains(t, out, "Server not running")
	assert.Contains(t, out, "make sure the service at")
}

func TestComparison_Undecided(t *testing.T) {
	c := harness.Comparison{
		First:  harness.Outcome{Target: "a", Err: errors.New("boom")},
		Second: harness.Outcome{Target: "b", Result: result("b", 10)},
	}
	out := Comparison(c, "first", "second")

	assert.Contains(t, out, "Run failed")
	assert.NotContains(t, out, "wins")
}
