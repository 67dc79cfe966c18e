package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sokinpui/shgutter/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Show a script with its findings and re-check it on every save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Watch(cmd.Context(), args[0], engineOptions(), styles(os.Stdout))
	},
}
