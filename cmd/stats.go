package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pulseboard/pkg/config"
	"pulseboard/pkg/point"
	"pulseboard/pkg/server"
	"pulseboard/pkg/storage"
)

var (
	countColor = color.New(color.FgGreen, color.Bold)
	emptyColor = color.New(color.FgYellow)
)

// statsCmd prints store statistics as a table.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store statistics",
	Long:  `Open the configured store and print its point count, time bounds and size on disk as a table.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		store, err := server.OpenStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()

		stats, err := store.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read store statistics: %w", err)
		}

		return printStats(os.Stdout, cfg.DatabaseURL, stats)
	},
}

// printStats renders store statistics as a two-column table.
func printStats(w io.Writer, databaseURL string, stats *storage.Stats) error {
	backend, _, err := storage.ParseURL(databaseURL)
	if err != nil {
		return err
	}

	count := countColor.Sprintf("%d", stats.TotalPoints)
	if stats.TotalPoints == 0 {
		count = emptyColor.Sprint("0 (empty)")
	}

	bound := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format(point.TimeLayout)
	}

	data := [][]string{
		{"Database", truncateValue(databaseURL, maxValueWidth())},
		{"Backend", string(backend)},
		{"Total points", count},
		{"Oldest point", bound(stats.OldestPoint)},
		{"Newest point", bound(stats.NewestPoint)},
		{"Size on disk", formatBytes(stats.SizeBytes)},
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Stat", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// maxValueWidth computes how much room table values get, leaving space for
// the stat column and table borders.
func maxValueWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		termWidth = 80 // conservative default for narrow terminals and CI
	}

	available := termWidth - 24
	if available < 20 {
		return 20
	}
	return available
}

// truncateValue shortens a value to maxWidth runes with an ellipsis.
func truncateValue(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// formatBytes renders a byte count in binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
