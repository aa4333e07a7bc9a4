// package formatter renders sync results, status, and run history for
// terminal and machine-readable output (plain text, JSON, Markdown)
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// SyncResultText renders a run outcome as a styled terminal summary.
func SyncResultText(result *models.SyncResult) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render("Sync Result"))
	buf.WriteString("\n")

	if result.Success {
		buf.WriteString(styles.ok.Render("Status: success"))
	} else {
		buf.WriteString(styles.err.Render("Status: failed"))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("Added:    %d\n", result.TracksAdded))
	buf.WriteString(fmt.Sprintf("Removed:  %d\n", result.TracksRemoved))
	buf.WriteString(fmt.Sprintf("Source:   %d tracks\n", result.SourceCount))
	buf.WriteString(fmt.Sprintf("Dest:     %d tracks\n", result.DestCount))
	buf.WriteString(fmt.Sprintf("Duration: %.1fs\n", result.Duration))

	if len(result.Errors) > 0 {
		buf.WriteString(styles.warn.Render(fmt.Sprintf("Errors (%d):", len(result.Errors))))
		buf.WriteString("\n")
		for _, e := range result.Errors {
			buf.WriteString(fmt.Sprintf("  - %s\n", e))
		}
	}

	return buf.String()
}

// SyncResultJSON renders a run outcome as indented JSON.
func SyncResultJSON(result *models.SyncResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sync result: %w", err)
	}
	return data, nil
}

// StatusText renders the persisted status file as a terminal summary.
func StatusText(status *shared.Status) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render("Sync Status"))
	buf.WriteString("\n")

	switch status.Status {
	case "success":
		buf.WriteString(styles.ok.Render("Status: success"))
	case "running":
		buf.WriteString(styles.warn.Render("Status: running"))
	default:
		buf.WriteString(styles.err.Render("Status: " + status.Status))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("Last sync: %s\n", status.LastSyncTime))
	buf.WriteString(fmt.Sprintf("Added:     %d\n", status.TracksAdded))
	buf.WriteString(fmt.Sprintf("Removed:   %d\n", status.TracksRemoved))
	buf.WriteString(fmt.Sprintf("Source:    %d tracks\n", status.SourceCount))
	buf.WriteString(fmt.Sprintf("Dest:      %d tracks\n", status.DestCount))

	if status.LastError != nil {
		buf.WriteString(styles.err.Render("Last error: " + *status.LastError))
		buf.WriteString("\n")
	}

	return buf.String()
}

// HistoryText renders run history as a terminal table, newest first.
func HistoryText(runs []*models.SyncRun) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render("Run History"))
	buf.WriteString("\n")

	if len(runs) == 0 {
		buf.WriteString(styles.help.Render("No runs recorded yet."))
		buf.WriteString("\n")
		return buf.String()
	}

	for _, run := range runs {
		result := run.Result()

		outcome := styles.ok.Render("ok")
		if !result.Success {
			outcome = styles.err.Render("failed")
		}

		buf.WriteString(fmt.Sprintf("#%d  %s  %s  +%d -%d  %.1fs",
			run.Sequence(),
			run.CreatedAt().Format("2006-01-02 15:04"),
			outcome,
			result.TracksAdded,
			result.TracksRemoved,
			result.Duration,
		))
		if n := len(result.Errors); n > 0 {
			buf.WriteString(styles.warn.Render(fmt.Sprintf("  (%d errors)", n)))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// SyncResultMarkdown renders a run outcome as a Markdown report.
func SyncResultMarkdown(result *models.SyncResult) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Sync Result\n\n")

	status := "success"
	if !result.Success {
		status = "failed"
	}
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", status))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", result.TracksAdded))
	buf.WriteString(fmt.Sprintf("**Removed**: %d\n", result.TracksRemoved))
	buf.WriteString(fmt.Sprintf("**Source tracks**: %d\n", result.SourceCount))
	buf.WriteString(fmt.Sprintf("**Destination tracks**: %d\n", result.DestCount))
	buf.WriteString(fmt.Sprintf("**Duration**: %.1fs\n", result.Duration))

	if len(result.Errors) > 0 {
		buf.WriteString("\n## Errors\n\n")
		for _, e := range result.Errors {
			buf.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	return buf.Bytes()
}
