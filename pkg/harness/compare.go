package harness

import (
	"context"
	"fmt"
)

// Verdict names the faster side of a comparison.
type Verdict string

const (
	VerdictFirst  Verdict = "first"
	VerdictSecond Verdict = "second"
	VerdictTie    Verdict = "tie"
)

// Outcome is one side of a comparison: a result or the error that ended it.
type Outcome struct {
	Target string
	Result *Result
	Err    error
}

// Comparison holds both outcomes of the same workload and count.
// Verdict and MarginMS are set only when both runs succeeded.
type Comparison struct {
	Workload Workload
	Count    int
	First    Outcome
	Second   Outcome
	Verdict  Verdict
	MarginMS int64
	Decided  bool
}

// Decide compares two elapsed times; the lower one wins by the difference.
func Decide(first, second int64) (Verdict, int64) {
	switch {
	case first < second:
		return VerdictFirst, second - first
	case second < first:
		return VerdictSecond, first - second
	default:
		return VerdictTie, 0
	}
}

// Compare runs w against first and then second. A failure on one side is
// recorded in its Outcome and does not prevent the other run. Only an invalid
// workload or count is returned as an error, before any request is sent.
func (r *Runner) Compare(ctx context.Context, first, second string, w Workload, count int) (Comparison, error) {
	if _, ok := workloads[w]; !ok {
		return Comparison{}, fmt.Errorf("%w: %q", ErrUnknownWorkload, w)
	}
	if count < 1 || count > MaxRequests {
		return Comparison{}, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidCount, count, MaxRequests)
	}

	c := Comparison{Workload: w, Count: count}
	c.First = r.outcome(ctx, first, w, count)
	c.Second = r.outcome(ctx, second, w, count)

	if c.First.Err == nil && c.Second.Err == nil {
		c.Verdict, c.MarginMS = Decide(c.First.Result.ElapsedMS, c.Second.Result.ElapsedMS)
		c.Decided = true
	}
	return c, nil
}

func (r *Runner) outcome(ctx context.Context, target string, w Workload, count int) Outcome {
	res, err := r.Run(ctx, target, w, count)
	if err != nil {
		r.logger.Warn("run failed", "target", target, "workload", w, "error", err)
		return Outcome{Target: target, Err: err}
	}
	return Outcome{Target: target, Result: &res}
}
