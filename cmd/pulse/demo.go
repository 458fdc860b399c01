package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/pulse/pkg/microtask"
	"github.com/vango-dev/pulse/pkg/reactive"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the count/double example and print each step",
		Long: `Run the count/double example in process.

Shows a computed value following its dependency, an equal value being
suppressed, and two batched updates reaching a listener as one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDemo(cmd.OutOrStdout())
			return nil
		},
	}
}

func runDemo(w io.Writer) {
	count := reactive.NewSignal(2, reactive.WithName("count"))
	computes := 0
	double := reactive.NewComputed(func() int {
		computes++
		return count.Get() * 2
	}, []reactive.Source{count}, reactive.WithName("double"))

	double.Effect(func(v int) {
		info(w, "double -> %d", v)
	})

	for _, n := range []int{5, 5, 0} {
		before := computes
		count.Set(n)
		success(w, "count.Set(%d): double=%d recomputed=%t", n, double.Get(), computes > before)
	}

	batched := reactive.NewSignal(0, reactive.WithName("batched"), reactive.AsyncUpdates())
	batched.Effect(func(v int) {
		info(w, "batched -> %d", v)
	})
	batched.Set(1)
	batched.Set(2)
	success(w, "batched.Set(1), batched.Set(2): %d flush pending", microtask.Default().Len())
	microtask.Drain()
}
