package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curio/internal/core/domain"
)

var (
	queryLimit   int
	queryMinSim  float64
	queryAugment bool
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [source] [query]",
	Short: "Query a knowledge collection",
	Long: `Runs fused retrieval against the collection for the given source
type (ticket, wiki, qa or file). Semantic (vector) and keyword (BM25)
results are merged, optionally reranked, and scored into [0, 1].

The first query against a collection builds its retrieval pipeline;
subsequent queries reuse it until 'curio docs invalidate'.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 10, "maximum number of results")
	queryCmd.Flags().Float64Var(&queryMinSim, "min-similarity", 0, "drop results scoring below this threshold")
	queryCmd.Flags().BoolVar(&queryAugment, "augment", false, "synthesise an answer from the top results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	source := domain.SourceType(args[0])
	if !source.Valid() {
		return fmt.Errorf("unknown source %q (want ticket, wiki, qa or file)", args[0])
	}

	opts := domain.QueryOptions{
		Limit:         queryLimit,
		MinSimilarity: queryMinSim,
		Augment:       queryAugment,
	}
	resp, err := queryService.Query(cmd.Context(), source, args[1], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputQueryText(cmd, resp)
}

func outputQueryText(cmd *cobra.Command, resp *domain.QueryResponse) error {
	for _, warning := range resp.Warnings {
		cmd.Printf("Warning: %s\n", warning)
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	if resp.Results[0].Answer != nil {
		cmd.Println("Answer:")
		cmd.Printf("  %s\n", *resp.Results[0].Answer)
		cmd.Println()
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range resp.Results {
		title := result.Title
		if title == "" {
			title = result.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, result.SimilarityScore)
		if url := result.Metadata["url"]; url != "" {
			cmd.Printf("      %s\n", url)
		}
		cmd.Printf("      %s\n", snippet(result.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates content to a single display line.
func snippet(content string, max int) string {
	for i, r := range content {
		if r == '\n' {
			content = content[:i]
			break
		}
	}
	if len(content) > max {
		return content[:max] + "..."
	}
	return content
}
