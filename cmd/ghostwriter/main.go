// Command ghostwriter serves tone-based reply suggestions over HTTP and offers
// a few operator commands around the same stack.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
	dev        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ghostwriter",
		Short:         "AI reply suggestions with a multi-provider fallback chain",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&opts.dev, "dev", false, "developer mode: console logs, relaxed secrets")

	root.AddCommand(
		newServeCmd(opts),
		newSuggestCmd(opts),
		newMigrateCmd(opts),
		newTonesCmd(),
	)
	return root
}
