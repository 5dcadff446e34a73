// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibmerge CLI.
// Implements: prd002-sources, prd003-matching, prd004-merge,
//             prd005-library, prd006-export (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibmerge/internal/secrets"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bibmerge CLI.
var rootCmd = &cobra.Command{
	Use:   "bibmerge",
	Short: "Search bibliographic databases and merge duplicate records",
	Long: `bibmerge queries bibliographic databases (Crossref, arXiv, OpenAlex,
Semantic Scholar), detects records that describe the same publication, and
merges each group into one canonical record with full provenance.

Use search to query sources and deduplicate the results, merge to re-run
the merge over a saved query file with different settings, and library to
manage the local record store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibmerge.yaml or ~/.config/bibmerge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibmerge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibmerge"))
		}
	}

	viper.SetEnvPrefix("BIBMERGE")
	viper.AutomaticEnv()

	viper.SetDefault("match.title_similarity_threshold", 0.85)
	viper.SetDefault("match.year_tolerance", 1)
	viper.SetDefault("merge.priority", types.DefaultMergeConfig().Priority)
	viper.SetDefault("library.dir", "library")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// matchConfig builds the matching thresholds from config.
func matchConfig() types.MatchConfig {
	return types.MatchConfig{
		TitleSimilarityThreshold: viper.GetFloat64("match.title_similarity_threshold"),
		YearTolerance:            viper.GetInt("match.year_tolerance"),
	}
}

// mergeConfig builds the source priority list from config.
func mergeConfig() types.MergeConfig {
	priority := viper.GetStringSlice("merge.priority")
	if len(priority) == 0 {
		return types.DefaultMergeConfig()
	}
	return types.MergeConfig{Priority: priority}
}

// libraryConfig builds the library store settings from config and flags.
func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	dir, _ := cmd.Flags().GetString("library-dir")
	if dir == "" {
		dir = viper.GetString("library.dir")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.LibraryConfig{LibraryDir: dir, MaxResults: maxResults}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
