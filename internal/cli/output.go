package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/sozercan/thesis-ai/internal/diff"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

const (
	formatHuman = "human"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatHuman, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (human, json, yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls human for the terminal view.
func render(w io.Writer, format string, v interface{}, human func(io.Writer)) error {
	switch format {
	case formatJSON:
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	case formatYAML:
		output, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(output)
		return err
	default:
		human(w)
		return nil
	}
}

// analysisReport is the machine-readable form of an analyze run.
type analysisReport struct {
	Mode     thesis.Mode           `json:"mode" yaml:"mode"`
	Model    string                `json:"model" yaml:"model"`
	Attempts int                   `json:"attempts" yaml:"attempts"`
	Duration string                `json:"duration" yaml:"duration"`
	Result   thesis.AnalysisResult `json:"result" yaml:"result"`
	Diff     []diff.Segment        `json:"diff,omitempty" yaml:"diff,omitempty"`
}

func displayAnalysis(w io.Writer, report analysisReport) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	scoreColor(report.Result.Score).Fprintf(w, "SKOR: %s/100\n", formatScore(report.Result.Score))
	if report.Model != "" {
		fmt.Fprintf(w, "Mode: %s, model: %s, percobaan: %d, durasi: %s\n\n",
			report.Mode, report.Model, report.Attempts, report.Duration)
	} else {
		fmt.Fprintf(w, "Mode: %s\n\n", report.Mode)
	}

	if report.Result.OverallFeedback != "" {
		white.Fprintln(w, "UMPAN BALIK:")
		fmt.Fprintln(w, wrapText(report.Result.OverallFeedback, 80, "   "))
		fmt.Fprintln(w)
	}

	if len(report.Result.MissingSections) > 0 {
		yellow.Fprintln(w, "BAGIAN YANG HILANG:")
		for _, s := range report.Result.MissingSections {
			fmt.Fprintf(w, "   - %s\n", s)
		}
		fmt.Fprintln(w)
	}

	if len(report.Result.Suggestions) > 0 {
		cyan.Fprintln(w, "SARAN:")
		for i, s := range report.Result.Suggestions {
			fmt.Fprintf(w, "   %d. [%s] %s -> %s\n", i+1, s.Category,
				color.RedString(s.Original), color.GreenString(s.Suggestion))
			if s.Explanation != "" {
				fmt.Fprintf(w, "      %s\n", s.Explanation)
			}
		}
		fmt.Fprintln(w)
	}

	if report.Diff != nil {
		white.Fprintln(w, "PERUBAHAN:")
		writeDiff(w, report.Diff)
		fmt.Fprintln(w)
		fmt.Fprintln(w)
		stats := diff.Stats(report.Diff)
		fmt.Fprintf(w, "%d kata ditambah, %d kata dihapus, %d kata tetap\n\n", stats.Added, stats.Removed, stats.Unchanged)
	} else {
		white.Fprintln(w, "TEKS HASIL:")
		fmt.Fprintln(w, report.Result.FormattedText)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintln(w, color.HiBlackString("Gunakan -o json atau -o yaml untuk keluaran yang dapat dibaca mesin"))
}

// writeDiff prints segments inline: removed text red and struck through,
// added text green and underlined.
func writeDiff(w io.Writer, segments []diff.Segment) {
	removed := color.New(color.FgRed, color.CrossedOut)
	added := color.New(color.FgGreen, color.Underline)
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Removed:
			if color.NoColor {
				fmt.Fprintf(w, "[-%s-]", seg.Text)
			} else {
				removed.Fprint(w, seg.Text)
			}
		case diff.Added:
			if color.NoColor {
				fmt.Fprintf(w, "{+%s+}", seg.Text)
			} else {
				added.Fprint(w, seg.Text)
			}
		default:
			fmt.Fprint(w, seg.Text)
		}
	}
}

func displayHistory(w io.Writer, entries []thesis.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Riwayat kosong.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%2d  %s  %-12s %s  %s\n", i,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Mode,
			scoreColor(e.Result.Score).Sprintf("%5s", formatScore(e.Result.Score)),
			e.Preview(60))
	}
}

func displayModes(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold)
	for _, m := range thesis.Modes() {
		cyan.Fprintf(w, "%-13s", m)
		fmt.Fprintln(w, m.Description())
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 60:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func formatScore(score float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", score), "0"), ".")
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			switch {
			case currentLine == indent:
				currentLine += word
			case len(currentLine)+len(word)+1 > width:
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			default:
				currentLine += " " + word
			}
		}
		result.WriteString(currentLine + "\n")
	}
	return strings.TrimSuffix(result.String(), "\n")
}
