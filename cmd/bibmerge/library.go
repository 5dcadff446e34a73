// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmerge/internal/library"
	"github.com/pdiddy/bibmerge/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local record library (list, export)",
	Long: `Library manages a local SQLite store of canonical records built from
merged search results. Use subcommands to list records with full-text
search and filters, or to export the library in citation formats.`,
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List library records with full-text search and filters",
	Long: `List queries the library using FTS5 full-text search over titles and
abstracts, structured filters (year, source), or a combination of both.`,
	RunE: runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), listOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	records := make([]types.CanonicalRecord, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return formatTable(records, os.Stdout)
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library to YAML, JSON, BibTeX, RIS, or CSL",
	Long: `Export writes the full library (or a filtered subset) either to the
library directory (yaml, json) or to stdout (bibtex, ris, csl).
Supports the same filter flags as list for partial exports.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	opts := listOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(ctx, opts); err != nil {
			return err
		}
		fmt.Println("Exported to", libraryConfig(cmd).LibraryDir+"/export.yaml")
		return nil
	case "json":
		if err := store.ExportJSON(ctx, opts); err != nil {
			return err
		}
		fmt.Println("Exported to", libraryConfig(cmd).LibraryDir+"/export.json")
		return nil
	case "bibtex", "ris", "csl":
		opts.MaxResults = 100000
		entries, err := store.List(ctx, opts)
		if err != nil {
			return err
		}
		records := make([]types.CanonicalRecord, len(entries))
		for i, e := range entries {
			records[i] = e.Record
		}
		return formatRecords(records, format, os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, bibtex, ris, or csl", format)
	}
}

// --- shared helpers ---

func listOptsFromFlags(cmd *cobra.Command, args []string) library.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	year, _ := cmd.Flags().GetInt("year")
	sourceID, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:      queryText,
		Year:       year,
		SourceID:   sourceID,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("library-dir", "", "library directory (default from config)")
	libraryCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	libraryCmd.PersistentFlags().String("query", "", "full-text search over titles and abstracts")
	libraryCmd.PersistentFlags().Int("year", 0, "filter by publication year")
	libraryCmd.PersistentFlags().String("source", "", "filter by contributing source ID")
	libraryCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = use default)")

	// List flags.
	libraryListCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml, json, bibtex, ris, or csl")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
