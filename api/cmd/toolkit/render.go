package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		format string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render model Markdown to HTML (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "html":
				_, err = fmt.Fprintln(out, render.HTML(text))
			case "safe":
				_, err = fmt.Fprintln(out, render.Safe(text))
			case "print":
				var page string
				if page, err = render.Document(title, text); err == nil {
					_, err = io.WriteString(out, page)
				}
			default:
				err = fmt.Errorf("unknown format %q (want html, safe or print)", format)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "safe", "html, safe or print")
	cmd.Flags().StringVar(&title, "title", "ESL Teacher's AI Toolkit", "page title for --format print")
	return cmd
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the gamification rubric found in model output as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if _, gm, ok := gamify.Split(text); ok {
				text = gm
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(gamify.Extract(text))
		},
	}
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}
