package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sozercan/thesis-ai/internal/diff"
)

type diffOptions struct {
	semantic bool
	output   string
}

func newDiffCmd() *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff ORIGINAL MODIFIED",
		Short: "Show word-level changes between two text files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.semantic, "semantic", false, "Fold short coincidental matches into the surrounding changes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatHuman, "Output format (human, json, yaml)")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string, opts *diffOptions) error {
	if err := checkFormat(opts.output); err != nil {
		return err
	}

	original, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	modified, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	segments := diffSegments(string(original), string(modified), opts.semantic)

	result := struct {
		Segments []diff.Segment `json:"segments" yaml:"segments"`
		Stats    diff.Summary   `json:"stats" yaml:"stats"`
	}{nonNil(segments), diff.Stats(segments)}

	return render(cmd.OutOrStdout(), opts.output, result, func(w io.Writer) {
		writeDiff(w, segments)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\n%d kata ditambah, %d kata dihapus, %d kata tetap\n",
			result.Stats.Added, result.Stats.Removed, result.Stats.Unchanged)
	})
}

func diffSegments(original, modified string, semantic bool) []diff.Segment {
	if semantic {
		return diff.Readable(original, modified)
	}
	return diff.Words(original, modified)
}
