package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/edgard/plainbot/internal/config"
	"github.com/edgard/plainbot/internal/text"
)

// newRootCmd builds the plainfmt command tree. Every subcommand reads the
// named files, or stdin when none are given, and writes to stdout.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "plainfmt",
		Short:        "Convert markdown into plain chat text",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(
		createConvertCmd(),
		createFormatCmd(),
		createListCmd(),
		createSplitCmd(),
		createPreviewCmd(),
	)
	return root
}

func createConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [file...]",
		Short: "Strip markdown syntax, keeping the visible text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return transform(cmd, args, text.Convert)
		},
	}
}

func createFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format [file...]",
		Short: "Format a chat response: one paragraph per line, sanitized",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := text.Normalizer{Mode: text.ModeResponse}
			return transform(cmd, args, n.Apply)
		},
	}
}

func createListCmd() *cobra.Command {
	var renumber bool
	cmd := &cobra.Command{
		Use:   "list [file...]",
		Short: "Replace list bullets, optionally renumbering ordered lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := text.Normalizer{Mode: text.ModeList, Renumber: renumber}
			return transform(cmd, args, n.Apply)
		},
	}
	cmd.Flags().BoolVarP(&renumber, "renumber", "r", false, "Renumber ordered list runs from 1")
	return cmd
}

func createSplitCmd() *cobra.Command {
	var (
		limit     int
		separator string
	)
	cmd := &cobra.Command{
		Use:   "split [file...]",
		Short: "Split text into chunks of at most --limit characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d: must not be negative", limit)
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			chunks := text.Split(input, limit)
			_, err = fmt.Fprint(cmd.OutOrStdout(), joinChunks(chunks, separator))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", config.DefaultMaxMessageLength, "Maximum characters per chunk, 0 for no limit")
	cmd.Flags().StringVar(&separator, "separator", "---", "Line printed between chunks")
	return cmd
}

func createPreviewCmd() *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "preview [file...]",
		Short: "Show the rendered markdown next to the plain output",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithStylePath(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}
			rendered, err := renderer.Render(input)
			if err != nil {
				return fmt.Errorf("failed to render markdown: %w", err)
			}

			n := text.Normalizer{Mode: text.ModeResponse}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "== markdown ==")
			fmt.Fprintln(out, strings.TrimRight(rendered, "\n"))
			fmt.Fprintln(out, "== plain ==")
			_, err = fmt.Fprintln(out, n.Apply(input))
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "notty", "glamour style name or path")
	cmd.Flags().IntVar(&width, "width", 80, "Word wrap width for the rendered markdown")
	return cmd
}

func transform(cmd *cobra.Command, args []string, fn func(string) string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	out := fn(input)
	if out == "" {
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// readInput concatenates the named files, separated by a blank line, or reads
// stdin when no files are given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	parts := make([]string, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n\n"), nil
}

func joinChunks(chunks []string, separator string) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString(separator)
			b.WriteByte('\n')
		}
		b.WriteString(c)
		b.WriteByte('\n')
	}
	return b.String()
}
