// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibmerge/internal/dedup"
	"github.com/pdiddy/bibmerge/internal/source"
	"github.com/pdiddy/bibmerge/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search bibliographic sources and merge duplicate results",
	Long: `Search queries the enabled bibliographic sources (Crossref, arXiv,
OpenAlex, Semantic Scholar) for records matching a free-text query or
structured parameters. Results from all sources are clustered by
identifier and title similarity, and each cluster is merged into one
canonical record.

Use --save to write the raw batches and merged records to a query file;
the merge can later be re-run from that file with different settings.
Use --import to add the merged records to the local library.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := queryFromFlags(cmd, args)

	cfg := sourceConfigFromFlags(cmd)
	sources := source.Enabled(cfg)

	ctx := context.Background()
	batches, err := source.Collect(ctx, query, sources, cfg, os.Stderr)
	if err != nil {
		return err
	}

	pipeline := dedup.Pipeline{Match: matchConfig(), Merge: mergeConfig()}
	out := pipeline.Run(batches.PerSource)

	fmt.Fprintf(os.Stderr, "%d raw results, %d duplicates removed, %d records\n",
		out.RawCount, out.DupsRemoved, len(out.Records))

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := source.WriteQueryFile(savePath, query, sources, batches, out.Records); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved query file:", savePath)
	}

	if doImport, _ := cmd.Flags().GetBool("import"); doImport {
		if err := importRecords(ctx, cmd, out.Records); err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return formatRecords(out.Records, format, os.Stdout)
}

// queryFromFlags assembles the structured query from flags and
// positional arguments.
func queryFromFlags(cmd *cobra.Command, args []string) source.Query {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	author, _ := cmd.Flags().GetString("author")
	keywords, _ := cmd.Flags().GetString("keywords")

	q := source.Query{FreeText: queryText, Author: author}
	if keywords != "" {
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				q.Keywords = append(q.Keywords, kw)
			}
		}
	}
	return q
}

// sourceConfigFromFlags builds the fan-out configuration. Credentials
// come from flags, then config, then the .secrets/ directory.
func sourceConfigFromFlags(cmd *cobra.Command) types.SourceConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cfg := types.SourceConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "bibmerge/" + version,
		},
		MaxResults:            maxResults,
		CrossrefMailto:        secretDefault("crossref-mailto", viper.GetString("sources.crossref_mailto")),
		OpenAlexEmail:         secretDefault("openalex-email", viper.GetString("sources.openalex_email")),
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("sources.semantic_scholar_api_key")),
	}

	enabled, _ := cmd.Flags().GetString("sources")
	if enabled == "" {
		cfg.EnableCrossref = true
		cfg.EnableArxiv = true
		cfg.EnableOpenAlex = true
		cfg.EnableSemanticScholar = true
		return cfg
	}
	for _, name := range strings.Split(enabled, ",") {
		switch strings.TrimSpace(name) {
		case "crossref":
			cfg.EnableCrossref = true
		case "arxiv":
			cfg.EnableArxiv = true
		case "openalex":
			cfg.EnableOpenAlex = true
		case "semanticscholar":
			cfg.EnableSemanticScholar = true
		default:
			fmt.Fprintf(os.Stderr, "warning: unknown source %q ignored\n", name)
		}
	}
	return cfg
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search query")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("keywords", "", "additional keywords (comma-separated)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results per source")
	searchCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	searchCmd.Flags().String("sources", "", "comma-separated sources to query (default: all)")
	searchCmd.Flags().String("format", "table", "output format: table, json, csl, bibtex, ris")
	searchCmd.Flags().String("save", "", "write raw batches and merged records to a query file")
	searchCmd.Flags().Bool("import", false, "import merged records into the library")
	searchCmd.Flags().String("library-dir", "", "library directory for --import (default from config)")

	rootCmd.AddCommand(searchCmd)
}
