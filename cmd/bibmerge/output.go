// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmerge/internal/export"
	"github.com/pdiddy/bibmerge/internal/library"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// formatRecords writes canonical records to w in the requested format.
func formatRecords(records []types.CanonicalRecord, format string, w io.Writer) error {
	switch format {
	case "table", "":
		return formatTable(records, w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "csl":
		return export.WriteCSL(records, w)
	case "bibtex":
		return export.WriteBibTeX(records, w)
	case "ris":
		return export.WriteRIS(records, w)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, csl, bibtex, or ris", format)
	}
}

func formatTable(records []types.CanonicalRecord, w io.Writer) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-24s  %-6s  %s\n",
		"#", "Title", "First Author", "Year", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range records {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		author := ""
		if len(r.Authors) > 0 {
			author = r.Authors[0]
		}
		if len(author) > 24 {
			author = author[:21] + "..."
		}
		year := ""
		if r.Year != 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-50s  %-24s  %-6s  %s\n",
			i+1, title, author, year, sourceList(r))
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
	return nil
}

// sourceList names the distinct sources that contributed to a record,
// in provenance order.
func sourceList(r types.CanonicalRecord) string {
	var names []string
	seen := map[string]bool{}
	for _, p := range r.Provenance {
		if !seen[p.SourceID] {
			seen[p.SourceID] = true
			names = append(names, p.SourceID)
		}
	}
	return strings.Join(names, ",")
}

// importRecords adds canonical records to the local library store.
func importRecords(ctx context.Context, cmd *cobra.Command, records []types.CanonicalRecord) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(ctx, records, os.Stderr)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed to import", summary.Failed)
	}
	return nil
}
