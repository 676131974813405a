package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/davfile/resource"
)

func NewBackendsCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List registered resource classes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range resource.List() {
				mark := " "
				if name == c.Config.Webdav.ResourceClass {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, name)
			}
			return nil
		},
	}
}

func init() {
	register(NewBackendsCmd)
}
