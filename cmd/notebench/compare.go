package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebench/internal/report"
	"github.com/aretw0/notebench/pkg/harness"
)

var (
	compareFirst      string
	compareSecond     string
	compareFirstName  string
	compareSecondName string
	compareWorkload   string
	compareCount      int
	compareJSON       bool
)

type comparisonJSON struct {
	Workload harness.Workload `json:"workload"`
	Count    int              `json:"count"`
	First    outcomeJSON      `json:"first"`
	Second   outcomeJSON      `json:"second"`
	Verdict  harness.Verdict  `json:"verdict,omitempty"`
	MarginMS *int64           `json:"margin_ms,omitempty"`
}

type outcomeJSON struct {
	Target string          `json:"target"`
	Result *harness.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func toOutcomeJSON(o harness.Outcome) outcomeJSON {
	out := outcomeJSON{Target: o.Target, Result: o.Result}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same workload against two backends and report the faster one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		first, second := cfg.BenchFirst, cfg.BenchSecond
		override(cmd, "first", &first, compareFirst)
		override(cmd, "second", &second, compareSecond)

		w, err := parseWorkload(compareWorkload)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner := harness.NewRunner(harness.WithLogger(slog.Default()))
		c, err := runner.Compare(ctx, first, second, w, compareCount)
		if err != nil {
			return err
		}

		if compareJSON {
			out := comparisonJSON{
				Workload: c.Workload,
				Count:    c.Count,
				First:    toOutcomeJSON(c.First),
				Second:   toOutcomeJSON(c.Second),
			}
			if c.Decided {
				out.Verdict = c.Verdict
				out.MarginMS = &c.MarginMS
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		}

		fmt.Println(report.Comparison(c, compareFirstName, compareSecondName))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&compareFirst, "first", "", "Base URL of the first backend (default: BENCH_FIRST)")
	compareCmd.Flags().StringVar(&compareSecond, "second", "", "Base URL of the second backend (default: BENCH_SECOND)")
	compareCmd.Flags().StringVar(&compareFirstName, "first-name", "first", "Display name of the first backend")
	compareCmd.Flags().StringVar(&compareSecondName, "second-name", "second", "Display name of the second backend")
	addWorkloadFlags(compareCmd, &compareWorkload, &compareCount)
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Output in JSON format")
}
