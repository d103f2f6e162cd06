package main

import (
	"errors"
	"fmt"
	"strings"

	"calc-pro/internal/assistant"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func askCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask the AI assistant to solve or explain a math problem",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("nothing to ask")
			}

			ai, err := assistant.New(a.cfg.AI)
			if err != nil {
				return err
			}

			answer, err := ai.Solve(cmd.Context(), query)
			if err != nil {
				return errors.New(assistant.Message(err))
			}

			if !plain {
				answer = renderMarkdown(answer)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(answer, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the answer without markdown rendering")

	return cmd
}

// renderMarkdown returns content unchanged when the renderer is unavailable.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}
