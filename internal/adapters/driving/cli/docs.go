package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curio/internal/core/domain"
)

var (
	docsListOffset int
	docsListLimit  int
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage indexed entries",
	Long:  `Commands for inspecting and maintaining the entries in each collection.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list [source]",
	Short: "List entries in a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsList,
}

var docsGetCmd = &cobra.Command{
	Use:   "get [source] [id]",
	Short: "Show a single entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsGet,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [source] [id]",
	Short: "Remove an entry from a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsDelete,
}

var docsInvalidateCmd = &cobra.Command{
	Use:   "invalidate [source]",
	Short: "Discard a collection's cached retrieval pipeline",
	Long: `Discards the cached retrieval pipeline so the next query rebuilds
against the collection's current contents. Needed after deletions, and
after a pipeline build failure once the backend has recovered.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsInvalidate,
}

func init() {
	docsListCmd.Flags().IntVar(&docsListOffset, "offset", 0, "number of entries to skip")
	docsListCmd.Flags().IntVarP(&docsListLimit, "limit", "n", 50, "maximum number of entries")
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsGetCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsInvalidateCmd)
	rootCmd.AddCommand(docsCmd)
}

func parseSource(arg string) (domain.SourceType, error) {
	source := domain.SourceType(arg)
	if !source.Valid() {
		return "", fmt.Errorf("unknown source %q (want ticket, wiki, qa or file)", arg)
	}
	return source, nil
}

func runDocsList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	source, err := parseSource(args[0])
	if err != nil {
		return err
	}

	entries, err := documentService.List(cmd.Context(), source, docsListOffset, docsListLimit)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No entries.")
		return nil
	}
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%s  %s\n", entry.ID, title)
	}
	return nil
}

func runDocsGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	source, err := parseSource(args[0])
	if err != nil {
		return err
	}

	entry, err := documentService.Get(cmd.Context(), source, args[1])
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	cmd.Printf("ID:      %s\n", entry.ID)
	cmd.Printf("Title:   %s\n", entry.Title)
	cmd.Printf("Source:  %s\n", entry.SourceType)
	for key, value := range entry.Metadata {
		cmd.Printf("Meta:    %s=%s\n", key, value)
	}
	cmd.Println()
	cmd.Println(entry.Content)
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	source, err := parseSource(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), source, args[1]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	// The cached lexical snapshot still contains the entry until the
	// pipeline is rebuilt.
	if queryService != nil {
		queryService.Invalidate(source)
	}
	cmd.Printf("Deleted %s from %s\n", args[1], source.Collection())
	return nil
}

func runDocsInvalidate(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	source, err := parseSource(args[0])
	if err != nil {
		return err
	}

	queryService.Invalidate(source)
	cmd.Printf("Invalidated retrieval pipeline for %s\n", source.Collection())
	return nil
}
