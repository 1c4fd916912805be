package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/rework/internal/cache"
	"github.com/dshills/rework/internal/config"
)

var flagCacheJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the provider response cache",
}

// openCache opens the configured cache directory even when caching is
// switched off for reviews, so stale entries can still be managed.
func openCache() (*cache.Cache, config.Config, error) {
	cfg, err := config.Load(flagConfig, nil)
	if err != nil {
		return nil, cfg, err
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, cfg, fmt.Errorf("opening cache: %w", err)
	}
	return c, cfg, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached provider response",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openCache()
		if err != nil {
			return err
		}
		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		logger.Info("cache cleared")
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses.\n", n)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired or unreadable cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openCache()
		if err != nil {
			return err
		}
		n, err := c.Prune()
		if err != nil {
			return fmt.Errorf("pruning cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired responses.\n", n)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := openCache()
		if err != nil {
			return err
		}
		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		out := cmd.OutOrStdout()
		if flagCacheJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		printStats(out, stats, cfg.Cache.Enabled)
		return nil
	},
}

func printStats(w io.Writer, st cache.Stats, enabled bool) {
	state := "enabled"
	if !enabled {
		state = "disabled for reviews"
	}
	fmt.Fprintf(w, "Cache: %s (%s)\n", st.Dir, state)
	fmt.Fprintf(w, "Entries: %d  Expired: %d  Size: %d bytes\n", st.Entries, st.Expired, st.TotalBytes)

	names := make([]string, 0, len(st.Providers))
	for name := range st.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-40s %d\n", name, st.Providers[name])
	}
}

func init() {
	cacheShowCmd.Flags().BoolVar(&flagCacheJSON, "json", false, "Print statistics as JSON")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
