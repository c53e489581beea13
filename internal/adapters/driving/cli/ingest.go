package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/adapters/driving/manifest"
	"github.com/custodia-labs/ragline/internal/core/domain"
)

var (
	ingestTitle       string
	ingestContentType string
	ingestFilename    string
	ingestMeta        map[string]string
	ingestJSON        bool

	batchJSON bool
	batchMeta map[string]string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [url|path|-]",
	Short: "Ingest a single document",
	Long: `Downloads a URL or reads a local file, extracts its text, splits it into
chunks, embeds every chunk and stores the vectors.

URLs must serve one of ingest.expected_content_types (default application/pdf).
Use "-" to read the document from stdin.

Examples:
  ragline ingest https://arxiv.org/pdf/1706.03762
  ragline ingest ./notes/meeting.md --title "Team sync" --meta team=ml
  cat report.pdf | ragline ingest - --filename report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var batchCmd = &cobra.Command{
	Use:   "batch [manifest]",
	Short: "Ingest every document listed in a manifest",
	Long: `Ingests the sources of a TOML, YAML, JSON or plain-text manifest in order.
A failing document does not stop the batch; the report lists successes and
failures separately. The command fails only when every document failed.

Manifest example (batch.yaml):
  metadata:
    collection: papers
  sources:
    - url: https://arxiv.org/pdf/1706.03762
      title: Attention Is All You Need
    - path: ./local/survey.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (default derived from the source)")
	ingestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "media type of a local file or stdin")
	ingestCmd.Flags().StringVar(&ingestFilename, "filename", "", "name of the document read from stdin")
	ingestCmd.Flags().StringToStringVarP(&ingestMeta, "meta", "m", nil, "metadata key=value pairs stored with every chunk")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the ingestion item as JSON")

	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the report as JSON")
	batchCmd.Flags().StringToStringVarP(&batchMeta, "meta", "m", nil, "metadata added to every source")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(batchCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion service")
	}

	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}

	item, err := ingestionService.IngestSingle(cmd.Context(), src)
	if item != nil {
		if ingestJSON {
			if jerr := writeJSON(cmd, item); jerr != nil {
				return jerr
			}
		} else {
			printItem(cmd, item)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest %s: %w", src.Identifier(), err)
	}
	return nil
}

func sourceFromArg(cmd *cobra.Command, arg string) (domain.SourceDescriptor, error) {
	src := domain.SourceDescriptor{
		Title:       ingestTitle,
		ContentType: ingestContentType,
		Metadata:    ingestMeta,
	}
	switch {
	case arg == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return src, fmt.Errorf("read stdin: %w", err)
		}
		src.Content = data
		src.Filename = ingestFilename
		if src.Filename == "" {
			src.Filename = "stdin"
		}
	case manifest.IsURL(arg):
		src.URL = arg
	default:
		src.Path = arg
	}
	return src, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion service")
	}

	srcs, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	for i := range srcs {
		for k, v := range batchMeta {
			if srcs[i].Metadata == nil {
				srcs[i].Metadata = make(map[string]string, len(batchMeta))
			}
			if _, ok := srcs[i].Metadata[k]; !ok {
				srcs[i].Metadata[k] = v
			}
		}
	}

	report, err := ingestionService.IngestBatch(cmd.Context(), srcs)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	if report.AllFailed() {
		return errors.New("no document was ingested")
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
