package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List local capabilities and the tool catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Capabilities:")

		for _, key := range rt.Controller().Capabilities() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", key)
		}

		fmt.Fprintln(cmd.OutOrStdout())
		printTools(cmd, rt.Tools())

		return nil
	},
}
