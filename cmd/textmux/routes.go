package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/textmux/internal/demo"
	"github.com/vango-dev/textmux/pkg/router"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the demo router's route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := router.NewStore()
			if _, err := demo.Load(store); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), store.FormatTable())
			return nil
		},
	}
	return cmd
}
