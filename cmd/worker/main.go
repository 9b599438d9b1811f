package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Operator tools for the RWA wizard backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCatalogCmd(), newTokenomicsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
