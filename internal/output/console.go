package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const summaryRule = "=================================================="

// ConsoleSink prints human-readable progress: one line per repository as it
// completes, then a summary.
type ConsoleSink struct {
	writer io.Writer
	mu     sync.Mutex

	good *color.Color
	warn *color.Color
	bad  *color.Color
	bold *color.Color
}

func NewConsoleSink(w io.Writer, noColor bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	s := &ConsoleSink{
		writer: w,
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{s.good, s.warn, s.bad, s.bold} {
			c.DisableColor()
		}
	}
	return s
}

func (s *ConsoleSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch e.Type {
	case EventRunStarted:
		err = s.runStarted(e)
	case EventRunWarning:
		_, err = fmt.Fprintf(s.writer, "%s %s\n", s.warn.Sprint("warning:"), e.Message)
	case EventRepoPlanned:
		err = s.repoPlanned(e.Record)
	case EventRepoSynced:
		err = s.repoSynced(e.Record)
	case EventRunFinished:
		err = s.runFinished(e.Summary)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	return nil
}

func (s *ConsoleSink) runStarted(e Event) error {
	if e.Viewer != "" {
		if _, err := fmt.Fprintf(s.writer, "Authenticated as %s (%d organizations)\n", s.bold.Sprint(e.Viewer), len(e.Organizations)); err != nil {
			return err
		}
	}
	n := 0
	if e.Repos != nil {
		n = *e.Repos
	}
	if _, err := fmt.Fprintf(s.writer, "Total repositories found: %d\n", n); err != nil {
		return err
	}
	if n == 0 {
		_, err := fmt.Fprintln(s.writer, "No repositories found or insufficient permissions.")
		return err
	}
	return nil
}

func (s *ConsoleSink) repoPlanned(r *RepoRecord) error {
	if r == nil {
		return nil
	}
	label := s.good.Sprintf("[%s]", strings.ToUpper(r.Status))
	if r.Error != "" {
		label = s.warn.Sprintf("[%s]", strings.ToUpper(r.Status))
	}
	line := fmt.Sprintf("  %s %s -> %s", label, r.Repo, r.Path)
	if r.Error != "" {
		line += " - " + r.Error
	}
	_, err := fmt.Fprintln(s.writer, line)
	return err
}

func (s *ConsoleSink) repoSynced(r *RepoRecord) error {
	if r == nil {
		return nil
	}
	c := s.good
	switch r.Status {
	case "update_failed":
		c = s.warn
	case "clone_failed", "error":
		c = s.bad
	}
	_, err := fmt.Fprintf(s.writer, "  %s %s\n", c.Sprintf("[%s]", strings.ToUpper(r.Status)), r.Repo)
	return err
}

func (s *ConsoleSink) runFinished(sum *SummaryRecord) error {
	if sum == nil || sum.Total == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", summaryRule, s.bold.Sprint("Mirror summary"), summaryRule)
	fmt.Fprintf(&b, "Cloned:   %d\n", sum.Cloned)
	fmt.Fprintf(&b, "Updated:  %d\n", sum.Updated)
	if sum.Failed > 0 {
		fmt.Fprintf(&b, "%s\n", s.bad.Sprintf("Failed:   %d", sum.Failed))
		for _, f := range sum.Failures {
			detail := f.Error
			if detail == "" {
				detail = "unknown error"
			}
			// Keep multi-line stderr aligned under the repository name.
			indent := strings.Repeat(" ", len(f.Repo)+6)
			detail = strings.ReplaceAll(strings.TrimRight(detail, "\n"), "\n", "\n"+indent)
			fmt.Fprintf(&b, "  - %s: %s\n", f.Repo, detail)
		}
	}
	fmt.Fprintf(&b, "Location: %s\n", sum.Target)

	_, err := io.WriteString(s.writer, b.String())
	return err
}
