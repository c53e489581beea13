package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/adapters/driving/watcher"
)

var (
	watchDebounce time.Duration
	watchExisting bool
	watchMeta     map[string]string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests every file that is created or rewritten in it.
Hidden files and partial downloads (.part, .crdownload, .tmp) are ignored.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	watchCmd.Flags().StringToStringVarP(&watchMeta, "meta", "m", nil, "metadata key=value pairs stored with every chunk")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion service")
	}

	w, err := watcher.New(ingestionService, watcher.Config{
		Dir:      args[0],
		Debounce: watchDebounce,
		Existing: watchExisting,
		Metadata: watchMeta,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	items, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())

	for item := range items {
		printItem(cmd, &item)
	}
	return nil
}
