package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
)

var (
	ingestTitle string
	ingestID    string
	ingestFrom  string
	ingestMeta  []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source] [content]",
	Short: "Add a knowledge item to the index",
	Long: `Ingests one item into the collection for the given source type
(ticket, wiki, qa or file). Content comes from the argument, from
stdin when the argument is "-", or from the external system when
--from is given a reference (e.g. a Jira issue key).

Byte-identical content is deduplicated: re-ingesting returns the
existing entry's ID without touching the index.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "display title")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "stable identifier (e.g. ticket key)")
	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "fetch content by reference from the configured source system")
	ingestCmd.Flags().StringArrayVar(&ingestMeta, "meta", nil, "metadata pair key=value (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	source := domain.SourceType(args[0])
	if !source.Valid() {
		return fmt.Errorf("unknown source %q (want ticket, wiki, qa or file)", args[0])
	}

	req := driving.IngestRequest{
		SourceType: source,
		Title:      ingestTitle,
		ID:         ingestID,
		Metadata:   map[string]string{},
	}
	for _, pair := range ingestMeta {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --meta %q, want key=value", pair)
		}
		req.Metadata[key] = value
	}

	switch {
	case ingestFrom != "":
		fetcher, ok := fetchers[source]
		if !ok || fetcher == nil {
			return fmt.Errorf("no fetcher configured for source %q", source)
		}
		item, err := fetcher.Fetch(cmd.Context(), ingestFrom)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", ingestFrom, err)
		}
		req.Content = item.Content
		if req.Title == "" {
			req.Title = item.Title
		}
		if req.ID == "" {
			req.ID = item.ID
		}
		for key, value := range item.Metadata {
			if _, exists := req.Metadata[key]; !exists {
				req.Metadata[key] = value
			}
		}
	case len(args) == 2 && args[1] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		req.Content = string(data)
	case len(args) == 2:
		req.Content = args[1]
	default:
		return errors.New("content argument or --from reference required")
	}

	receipt, err := ingestService.Ingest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if receipt.Deduplicated {
		cmd.Printf("Duplicate content, existing entry %s\n", receipt.ID)
	} else {
		cmd.Printf("Ingested %s (hash %.12s)\n", receipt.ID, receipt.ContentHash)
	}
	return nil
}
