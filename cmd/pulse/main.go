package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/pulse/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// colors reports whether CLI output may use ANSI colors.
var colors = true

func rootCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Reactive cells served over HTTP and WebSocket",
		Long: `Pulse runs a small graph of reactive cells and mirrors it to clients.

A signal holds a value; a computed cell derives one from explicit
dependencies. Listeners run when a value changes, either at once or
batched into one flush per loop turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setColors(!noColor && os.Getenv("NO_COLOR") == "")
		},
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output (also set by NO_COLOR)")

	cmd.AddCommand(
		serveCmd(),
		demoCmd(),
		errorsCmd(),
		versionCmd(),
	)
	return cmd
}

func setColors(enabled bool) {
	colors = enabled
	if enabled {
		errors.EnableColors()
	} else {
		errors.DisableColors()
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	mark := "✓"
	if colors {
		mark = "\033[32m✓\033[0m"
	}
	fmt.Fprintf(w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
