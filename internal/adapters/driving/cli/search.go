package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchK    int
	searchJSON bool

	askK           int
	askJSON        bool
	askShowSources bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the k most similar chunks, ranked by the
index metric (cosine or dot_product).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from indexed documents",
	Long: `Retrieves the k most similar chunks and asks the generation model to answer
using only them. The active prompt template is used when one is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "number of results (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")

	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of chunks used as context (default retrieval.top_k)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askShowSources, "sources", true, "list the chunks the answer was built from")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return notConfigured("retrieval service")
	}

	query := strings.Join(args, " ")
	results, err := retrievalService.Search(cmd.Context(), query, searchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	printResults(cmd, results)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return notConfigured("retrieval service")
	}

	question := strings.Join(args, " ")
	answer, err := retrievalService.Answer(cmd.Context(), question, askK)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return writeJSON(cmd, answer)
	}

	cmd.Println(answerStyle.Render(strings.TrimSpace(answer.Answer)))
	if askShowSources && len(answer.Results) > 0 {
		cmd.Println()
		cmd.Println(headerStyle.Render("Sources"))
		printResults(cmd, answer.Results)
	}
	return nil
}
