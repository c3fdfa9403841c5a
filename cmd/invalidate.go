package cmd

import (
	"fmt"
	"strings"

	"github.com/farsistream-cli/farsistream/icon"
	"github.com/farsistream-cli/farsistream/internal/cache"
	"github.com/farsistream-cli/farsistream/query"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(invalidateCmd)

	invalidateCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// invalidateCmd drops the stored result for a page, forcing the next resolve
// to hit the network. Useful when a cached stream URL died at playback time.
var invalidateCmd = &cobra.Command{
	Use:   "invalidate [page-url]",
	Short: "Drop the stored resolution result for a content page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pageURL := strings.TrimSpace(args[0])

		cache.Remove(cache.GenerateKey(pageURL, "resolve"))

		fmt.Printf("%s invalidated %s\n", icon.Get(icon.Success), pageURL)
	},
}
