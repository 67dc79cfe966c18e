package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sokinpui/shgutter/cli"
	"github.com/sokinpui/shgutter/internal/app"
	"github.com/sokinpui/shgutter/internal/engine"
	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/ui"
)

var cfg = cli.Defaults()

var rootCmd = &cobra.Command{
	Use:   "shgutter",
	Short: "shellcheck diagnostics in the gutter",
	Long: `shgutter runs shellcheck on shell scripts while they are edited and shows the
findings next to the affected lines, with a preview of every suggested fix.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func main() {
	rootCmd.AddCommand(nvimCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)

	cli.BindFlags(rootCmd.PersistentFlags(), cfg)
	cli.BindCheckFlags(checkCmd.Flags(), cfg)
	cli.BindNvimFlags(nvimCmd.Flags(), cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, app.ErrFindings) {
			ui.Error("Error: %v", err)
			var detailed *app.DetailedError
			if errors.As(err, &detailed) {
				fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
			}
		}
		os.Exit(1)
	}
}

// loadConfig merges the config file under the flags and applies the color mode.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := cli.LoadFile(cfg.ConfigFile, cfg, cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ui.SetColor(useColor(os.Stderr))
	return nil
}

func useColor(f *os.File) bool {
	switch cfg.Color {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// styles returns terminal styles for f, or nil for plain output.
func styles(f *os.File) render.Styles {
	if !useColor(f) {
		return nil
	}
	return render.DefaultStyles()
}

// engineOptions builds the engine configuration shared by nvim and watch.
func engineOptions() engine.Options {
	opts := engine.Options{
		Launcher: cfg.Runner(),
		Policy:   cfg.Policy(),
		ExitWait: cfg.ExitWait,
		Warnf:    ui.Warning,
	}
	if cfg.Trace {
		opts.Tracef = ui.Trace
	}
	return opts
}
