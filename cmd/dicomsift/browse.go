package main

import (
	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [root]",
		Short: "Browse folders, preview series and copy them interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return browser.Run(root, a.logger)
		},
	}
}
