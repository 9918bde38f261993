package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/sozercan/thesis-ai/internal/analyzer"
	"github.com/sozercan/thesis-ai/internal/diff"
	"github.com/sozercan/thesis-ai/internal/docx"
	"github.com/sozercan/thesis-ai/internal/history"
	"github.com/sozercan/thesis-ai/internal/llm"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

type analyzeOptions struct {
	mode      string
	showDiff  bool
	output    string
	noHistory bool
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [FILE|-]",
		Short: "Analyze thesis text with the configured model chain",
		Long: `Analyze a text file, a .docx document or standard input.

Examples:
  # Proofread a chapter written in Word
  thesisctl analyze bab1.docx --mode proofread

  # Check an abstract and show what changed
  thesisctl analyze abstrak.txt --mode abstract --diff

  # Pipe text in and get JSON back
  cat draft.txt | thesisctl analyze - -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(thesis.ModeGeneral), "Analysis mode (general, abstract, chapter, bibliography, proofread)")
	cmd.Flags().BoolVarP(&opts.showDiff, "diff", "d", false, "Show word-level changes instead of the formatted text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the analysis in the history")

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	if err := checkFormat(opts.output); err != nil {
		return err
	}
	mode, err := thesis.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	text, err := readInput(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// The history is opened up front so a finished analysis is never lost to
	// an unusable database.
	var log *history.Log
	if !opts.noHistory {
		l, closeHistory, err := a.openHistory(ctx)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer closeHistory()
		log = l
	}

	backends, err := a.newBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	chain := analyzer.NewChain(cfg.Analysis, backends)
	az := analyzer.New(chain, cfg.Analysis.AttemptTimeout,
		llm.WithMaxTokens(cfg.Analysis.MaxTokens),
		llm.WithTemperature(cfg.Analysis.Temperature),
	)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = fmt.Sprintf(" Menganalisis dengan %d kandidat model...", chain.Len())
	s.Start()
	outcome, err := az.Analyze(ctx, text, mode)
	s.Stop()
	if err != nil {
		return err
	}

	report := analysisReport{
		Mode:     mode,
		Model:    outcome.Model,
		Attempts: outcome.Attempts,
		Duration: outcome.Duration.Round(time.Millisecond).String(),
		Result:   outcome.Result,
	}
	if opts.showDiff {
		report.Diff = nonNil(diff.Readable(text, outcome.Result.FormattedText))
	}

	err = render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer) {
		displayAnalysis(w, report)
	})
	if err != nil || log == nil {
		return err
	}

	entry := thesis.HistoryEntry{
		Result:    outcome.Result,
		Mode:      mode,
		Original:  text,
		CreatedAt: time.Now().UTC(),
	}
	if err := log.Record(ctx, entry); err != nil {
		return fmt.Errorf("analysis shown but not recorded: %w", err)
	}
	return nil
}

// readInput reads plain text from a file or stdin ("-"); .docx files are
// extracted first.
func readInput(stdin io.Reader, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(source), ".docx") {
		return docx.ExtractBytes(filepath.Base(source), data)
	}
	return string(data), nil
}

func nonNil(segments []diff.Segment) []diff.Segment {
	if segments == nil {
		return []diff.Segment{}
	}
	return segments
}
