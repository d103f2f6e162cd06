package main

import (
	"errors"
	"fmt"
	"strings"

	"calc-pro/internal/expr"

	"github.com/spf13/cobra"
)

var errInvalidExpression = errors.New(expr.InvalidExpressionMessage)

func evalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an arithmetic expression and record it in history",
		Long: `Evaluate an expression over decimal numbers, + - * / %, unary signs and
parentheses. Successful results are added to the shared history; a result
that is not a finite number prints "Error" and is not recorded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimSpace(strings.Join(args, " "))

			res, err := expr.Evaluate(input)
			if err != nil {
				return errInvalidExpression
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Value)
			if !res.Finite {
				return nil
			}

			rec, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			rec.Record(cmd.Context(), input, res.Value)
			return nil
		},
	}
}
