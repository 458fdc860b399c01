package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/pulse/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `List every error code pulse reports, or explain a single code.

Examples:
  pulse errors
  pulse errors E101`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					tmpl, _ := errors.GetTemplate(code)
					fmt.Fprintf(out, "%s  %-8s  %s\n", code, tmpl.Category, tmpl.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := errors.GetTemplate(code); !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run 'pulse errors' to list every code.")
			}
			fmt.Fprint(out, errors.New(code).Format())
			return nil
		},
	}
}
