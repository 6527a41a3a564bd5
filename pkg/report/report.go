// Package report writes matches and run summaries for users.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/macropower/csvr/pkg/pipeline"
	"github.com/macropower/csvr/pkg/process"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	ErrUnknownFormat = errors.New("unknown report format")

	AllFormats = []string{
		string(FormatText),
		string(FormatJSON),
	}
)

// GetFormat parses a report format name.
func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatText, FormatJSON}, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Printer writes one line per match. It implements [pipeline.Sink].
type Printer struct {
	w      io.Writer
	enc    *json.Encoder
	rule   lipgloss.Style
	format Format
	color  bool
}

// Option configures a [Printer].
type Option func(*Printer)

// WithColor enables styling of text output.
func WithColor(color bool) Option {
	return func(p *Printer) {
		p.color = color
	}
}

// NewPrinter creates a new [Printer]. Text output is styled by default when
// w is a terminal.
func NewPrinter(w io.Writer, format Format, opts ...Option) *Printer {
	p := &Printer{
		w:      w,
		format: format,
		enc:    json.NewEncoder(w),
		rule:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
	}

	WithColor(IsTerminal(w))(p)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Report writes m.
func (p *Printer) Report(m process.Match) error {
	if p.format == FormatJSON {
		err := p.enc.Encode(m)
		if err != nil {
			return fmt.Errorf("encode match: %w", err)
		}

		return nil
	}

	ruleText := m.Rule
	if p.color {
		ruleText = p.rule.Render(ruleText)
	}

	_, err := fmt.Fprintf(p.w, "Match: rule '%s' record '%s'\n", ruleText, m.RecordString())
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}

	return nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: File descriptors fit in an int.
}

// SummaryAttrs returns log attributes describing sum.
func SummaryAttrs(sum pipeline.Summary) []any {
	return []any{
		slog.String("run", sum.RunID),
		slog.String("files", humanize.Comma(int64(sum.Files))),
		slog.String("failed", humanize.Comma(int64(sum.FailedFiles))),
		slog.String("records", humanize.Comma(int64(sum.Records))),
		slog.String("matches", humanize.Comma(int64(sum.Matches))),
		slog.String("read", humanize.Bytes(uint64(max(sum.Bytes, 0)))),
		slog.Duration("duration", sum.Duration),
	}
}
