// Package ui renders the CLI's status output.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	// titleStyle for document titles and headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for completion indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for failure indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// FormatHeader renders the run header for a document.
func FormatHeader(w io.Writer, documentID int, title string, total int) {
	content := fmt.Sprintf("%s %s\n%s %d  %s %d",
		dimStyle.Render("Document:"), titleStyle.Render(title),
		dimStyle.Render("ID:"), documentID,
		dimStyle.Render("Sections:"), total,
	)
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatFetch writes one progress line for a fetched section.
func FormatFetch(w io.Writer, index, total int, title string) {
	fmt.Fprintf(w, "%s %s\n",
		dimStyle.Render(fmt.Sprintf("[%d/%d]", index, total)),
		title,
	)
}

// FormatSkip writes one progress line for an already-cached section.
func FormatSkip(w io.Writer, index, total int, title string) {
	fmt.Fprintf(w, "%s %s %s\n",
		dimStyle.Render(fmt.Sprintf("[%d/%d]", index, total)),
		title,
		dimStyle.Render("(cached)"),
	)
}

// FormatFailure renders a run failure with its cause.
func FormatFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("FAILED"), err)
}

// FormatSummary renders the completion summary box.
func FormatSummary(w io.Writer, fetched, skipped int) {
	content := fmt.Sprintf("%s\n%s %d  %s %d",
		successStyle.Render("Download complete"),
		dimStyle.Render("Fetched:"), fetched,
		dimStyle.Render("Cached:"), skipped,
	)
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatAssembled reports where the combined document was written.
func FormatAssembled(w io.Writer, path string, bytes int) {
	fmt.Fprintf(w, "%s %s %s\n",
		successStyle.Render("Assembled"),
		path,
		dimStyle.Render(fmt.Sprintf("(%d bytes)", bytes)),
	)
}
