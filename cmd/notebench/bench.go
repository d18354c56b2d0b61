package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebench/internal/report"
	"github.com/aretw0/notebench/pkg/harness"
)

var (
	benchTarget   string
	benchWorkload string
	benchCount    int
	benchJSON     bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run one workload against a single backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := cfg.BenchSecond
		override(cmd, "target", &target, benchTarget)

		w, err := parseWorkload(benchWorkload)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner := harness.NewRunner(harness.WithLogger(slog.Default()))
		res, err := runner.Run(ctx, target, w, benchCount)
		if err != nil {
			return reported(cmd, report.Error(target, target, err), err)
		}

		if benchJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(res)
		}
		fmt.Println(report.Result(string(w), res))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringVarP(&benchTarget, "target", "t", "", "Base URL of the backend API (default: BENCH_SECOND)")
	addWorkloadFlags(benchCmd, &benchWorkload, &benchCount)
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "Output in JSON format")
}

func addWorkloadFlags(cmd *cobra.Command, workload *string, count *int) {
	cmd.Flags().StringVarP(workload, "workload", "w", string(harness.WorkloadDB), "Workload: "+strings.Join(workloadNames(), ", "))
	cmd.Flags().IntVarP(count, "count", "n", 10, fmt.Sprintf("Number of requests (1-%d)", harness.MaxRequests))
	_ = cmd.RegisterFlagCompletionFunc("workload", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return workloadNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func workloadNames() []string {
	all := harness.Workloads()
	names := make([]string, len(all))
	for i, w := range all {
		names[i] = string(w)
	}
	return names
}

func parseWorkload(name string) (harness.Workload, error) {
	w, err := harness.ParseWorkload(name)
	if err != nil {
		return "", fmt.Errorf("%w (want one of %s)", err, strings.Join(workloadNames(), ", "))
	}
	return w, nil
}

// reported prints panel to the command's error stream and returns err with
// cobra's own "Error:" line silenced, so the failure is shown once.
func reported(cmd *cobra.Command, panel string, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), panel)
	cmd.SilenceErrors = true
	return err
}
