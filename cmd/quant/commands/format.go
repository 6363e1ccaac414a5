package commands

import (
	"fmt"
	"io"
	"time"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunHeader holds the run metadata printed before a command starts
type RunHeader struct {
	Title   string
	RunID   string // Optional
	Model   string
	Month   string
	Tickers int
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(w io.Writer, h RunHeader) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", h.Title)
	PrintSeparator(w)
	if h.RunID != "" {
		fmt.Fprintf(w, "  Run ID    : %s\n", h.RunID)
	}
	fmt.Fprintf(w, "  Model     : %s\n", h.Model)
	fmt.Fprintf(w, "  Month     : %s\n", h.Month)
	fmt.Fprintf(w, "  Tickers   : %d\n", h.Tickers)
	PrintSeparator(w)
}

// PrintCompletion prints the completion line
func PrintCompletion(w io.Writer, what string, d time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✅ %s completed in %.2fs\n", what, d.Seconds())
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}
