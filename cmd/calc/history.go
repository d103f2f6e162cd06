package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			entries := rec.List()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No calculations yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, c := range entries {
				ts := time.UnixMilli(c.Timestamp).Format("2006-01-02 15:04:05")
				fmt.Fprintf(tw, "%s\t%s\t= %s\t%s\n", c.ID[:min(8, len(c.ID))], c.Expression, c.Result, ts)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON list")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all past calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			rec.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	})

	return cmd
}
