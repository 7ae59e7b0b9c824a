package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "creditgest",
		Short:        "Extract normalized credit reports from bureau XML",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newExtractCmd())
	return root
}
