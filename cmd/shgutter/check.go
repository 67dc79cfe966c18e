package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sokinpui/shgutter/internal/app"
	"github.com/sokinpui/shgutter/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check scripts once and print the findings",
	Long: `Checks the given files, "-" for stdin. Without files the script is read from
stdin when it is piped and from the clipboard otherwise.`,
	Example: `  shgutter check deploy.sh
  pbpaste | shgutter check --format json
  shgutter check --markdown README.md`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	var bar *ui.ProgressBar
	if !cfg.NoAnimation && isTerminal(os.Stderr) {
		a.SetProgressCallback(func(current, total int) {
			if total < 2 {
				return
			}
			if bar == nil {
				bar = ui.NewProgressBar(os.Stderr, total, "Checking")
			}
			bar.Set(current)
		})
	}

	summary, err := a.Execute(cmd.Context(), args)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	if summary.Message != "" {
		ui.Warning("%s", summary.Message)
		return nil
	}

	if err := app.WriteReport(os.Stdout, summary.Results, cfg.Format, styles(os.Stdout)); err != nil {
		return err
	}
	for _, r := range summary.Results {
		if r.Err != nil {
			ui.Error("%s: %v", r.Unit.Name, r.Err)
		}
	}

	clean, flagged, failed := summary.Partition()
	if cfg.Format == "text" {
		ui.PrintCheckSummary(clean, flagged, failed)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d script(s) could not be checked", len(failed))
	}
	if len(flagged) > 0 {
		return app.ErrFindings
	}
	return nil
}
