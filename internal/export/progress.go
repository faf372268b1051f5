package export

import (
	"fmt"
	"io"
	"os"
)

// Progress reports counter-style progress for long-running phases. On a
// terminal it rewrites a single line with carriage returns; elsewhere it
// prints one line per update so logs stay readable.
type Progress struct {
	label   string
	total   int
	current int
	out     io.Writer
	tty     bool
}

// NewProgress creates a reporter writing to stdout.
func NewProgress(total int, label string) *Progress {
	return &Progress{
		label: label,
		total: total,
		out:   os.Stdout,
		tty:   isTerminal(os.Stdout),
	}
}

// Start displays the initial progress message.
func (p *Progress) Start() {
	if p.total == 0 {
		fmt.Fprintf(p.out, "%s: 0/0 (100%%)\n", p.label)
		return
	}
	p.print()
}

// Set moves progress to current and updates the display. Values beyond the
// total are ignored.
func (p *Progress) Set(current int) {
	if current > p.total {
		return
	}
	p.current = current
	p.print()
}

// Increment advances progress by one and updates the display.
func (p *Progress) Increment() {
	if p.current < p.total {
		p.current++
		p.print()
	}
}

// Complete displays the final progress message and, on a terminal, ends
// the rewritten line.
func (p *Progress) Complete() {
	p.print()
	if p.tty {
		fmt.Fprintln(p.out)
	}
}

func (p *Progress) print() {
	message := fmt.Sprintf("%s: %s", p.label, FormatCount(p.current, p.total))
	if p.tty {
		fmt.Fprintf(p.out, "\r%s", message)
	} else {
		fmt.Fprintln(p.out, message)
	}
}

// FormatCount renders "current/total (pct%)" with integer percentage. An
// empty total counts as complete.
func FormatCount(current, total int) string {
	if total == 0 {
		return "0/0 (100%)"
	}
	return fmt.Sprintf("%d/%d (%d%%)", current, total, current*100/total)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
