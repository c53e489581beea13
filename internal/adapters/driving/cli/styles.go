package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

const timeLayout = "2006-01-02 15:04:05"

// printItem writes one ingestion outcome line.
func printItem(cmd *cobra.Command, item *domain.IngestionItem) {
	if item.Status == domain.StateSucceeded {
		cmd.Printf("%s %s (%d chunks) %s\n",
			successStyle.Render("✓"), item.Title, item.ChunkCount, dimStyle.Render(item.DocumentID))
		return
	}
	reason := "unknown error"
	if item.Error != nil {
		reason = fmt.Sprintf("[%s at %s] %s", item.Error.Kind, item.Error.Stage, item.Error.Message)
	}
	cmd.Printf("%s %s: %s\n", failureStyle.Render("✗"), item.Source, reason)
}

// printReport writes a batch report with a summary line.
func printReport(cmd *cobra.Command, report domain.IngestionReport) {
	if len(report.Succeeded) > 0 {
		cmd.Println(headerStyle.Render("Succeeded"))
		for i := range report.Succeeded {
			printItem(cmd, &report.Succeeded[i])
		}
		cmd.Println()
	}
	if len(report.Failed) > 0 {
		cmd.Println(headerStyle.Render("Failed"))
		for i := range report.Failed {
			printItem(cmd, &report.Failed[i])
		}
		cmd.Println()
	}
	cmd.Printf("%d of %d documents ingested.\n", len(report.Succeeded), report.Total())
}

// printResults writes ranked search results.
func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	for i := range results {
		r := &results[i]
		title := r.Metadata[domain.MetaTitle]
		if title == "" {
			title = r.ID
		}
		cmd.Printf("  [%d] %s %s\n", r.Rank, headerStyle.Render(title), dimStyle.Render(fmt.Sprintf("(%.3f)", r.Score)))
		if src := r.Metadata[domain.MetaSource]; src != "" {
			cmd.Printf("      Source: %s\n", src)
		}
		cmd.Printf("      %s\n\n", snippet(r.Text, 240))
	}
}

// snippet flattens whitespace and truncates to maxLen runes.
func snippet(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
