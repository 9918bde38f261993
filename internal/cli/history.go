package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sozercan/thesis-ai/internal/diff"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var output string

	list := func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(output); err != nil {
			return err
		}
		log, closeHistory, err := a.openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeHistory()

		entries := log.Entries(cmd.Context())
		return render(cmd.OutOrStdout(), output, entries, func(w io.Writer) {
			displayHistory(w, entries)
		})
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show or clear the last analyses",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatHuman, "Output format (human, json, yaml)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored analyses, most recent first",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "show N",
			Short: "Show stored analysis N (0 is the most recent)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := checkFormat(output); err != nil {
					return err
				}
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("history index must be a number: %q", args[0])
				}

				log, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()

				entry, ok := log.Get(cmd.Context(), index)
				if !ok {
					return fmt.Errorf("no history entry %d", index)
				}

				report := analysisReport{
					Mode:   entry.Mode,
					Result: entry.Result,
					Diff:   nonNil(diff.Readable(entry.Original, entry.Result.FormattedText)),
				}
				return render(cmd.OutOrStdout(), output, entry, func(w io.Writer) {
					fmt.Fprintf(w, "Analisis #%d, %s\n", index, entry.CreatedAt.Local().Format(time.RFC1123))
					displayAnalysis(w, report)
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all stored analyses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				log, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()

				if err := log.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Riwayat dihapus.")
				return nil
			},
		},
	)

	return cmd
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List analysis modes and what each one checks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			displayModes(cmd.OutOrStdout())
		},
	}
}
