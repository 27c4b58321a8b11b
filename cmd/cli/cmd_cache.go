package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sguter90/windlog/pkg/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the HTTP response cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE:  runCachePurge,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show live and expired cache entries",
	RunE:  runCacheStats,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	store, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Purge(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries from %s\n", n, cfg.CachePath)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	store, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", cfg.CachePath)
	fmt.Fprintf(cmd.OutOrStdout(), "    TTL: %s\n", store.TTL())
	fmt.Fprintf(cmd.OutOrStdout(), "    Live entries: %d\n", st.Live)
	fmt.Fprintf(cmd.OutOrStdout(), "    Expired entries: %d\n", st.Expired)
	return nil
}
