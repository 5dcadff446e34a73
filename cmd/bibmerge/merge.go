// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmerge/internal/dedup"
	"github.com/pdiddy/bibmerge/internal/source"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <query-file>",
	Short: "Re-run the merge over a saved query file",
	Long: `Merge reads the raw per-source batches from a query file written by
search --save and runs the clustering and merge again with the current
thresholds and source priority. No network requests are made.

Use this to tune match.title_similarity_threshold, match.year_tolerance,
or merge.priority without re-querying the APIs.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	qf, err := source.ReadQueryFile(args[0])
	if err != nil {
		return err
	}

	pipeline := dedup.Pipeline{Match: matchConfig(), Merge: mergeConfig()}
	out := pipeline.Run(qf.RawBatches())

	fmt.Fprintf(os.Stderr, "%d raw results, %d duplicates removed, %d records\n",
		out.RawCount, out.DupsRemoved, len(out.Records))

	if doImport, _ := cmd.Flags().GetBool("import"); doImport {
		if err := importRecords(context.Background(), cmd, out.Records); err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return formatRecords(out.Records, format, os.Stdout)
}

func init() {
	mergeCmd.Flags().String("format", "table", "output format: table, json, csl, bibtex, ris")
	mergeCmd.Flags().Bool("import", false, "import merged records into the library")
	mergeCmd.Flags().String("library-dir", "", "library directory for --import (default from config)")
	mergeCmd.Flags().Int("max-results", 0, "library list limit for --import (0 = default)")

	rootCmd.AddCommand(mergeCmd)
}
