package main

import (
	"github.com/spf13/cobra"

	"github.com/sokinpui/shgutter/internal/nvim"
)

var nvimCmd = &cobra.Command{
	Use:   "nvim",
	Short: "Show diagnostics in a running Neovim",
	Long: `Connects to Neovim, checks the current buffer whenever it changes and draws the
findings as signs. :ShGutterHover shows the findings of the cursor line.

Start it from Neovim as an RPC job:

    vim.fn.jobstart({ "shgutter", "nvim", "--stdio" }, { rpc = true })`,
	Args: cobra.NoArgs,
	RunE: runNvim,
}

func runNvim(cmd *cobra.Command, _ []string) error {
	manager, err := nvim.New(cfg.Server, cfg.Stdio)
	if err != nil {
		return err
	}
	defer manager.Close()
	return manager.Run(cmd.Context(), engineOptions())
}
