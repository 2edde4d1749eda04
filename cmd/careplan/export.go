package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"careplan/internal/ics"
	appLog "careplan/internal/log"
)

func newExportICSCmd(root *rootOptions) *cobra.Command {
	var (
		window   windowFlags
		out      string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Write the agenda window as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			now := time.Now()
			a, err := buildAgenda(cmd.Context(), cfg, &window, nil, now)
			if err != nil {
				return err
			}

			items := a.Items()
			body := ics.Export(items, ics.ExportOptions{
				Calendar:      cfg.Calendar(),
				Name:          a.Patient,
				ExactDuration: duration,
				Stamp:         now,
			})

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("export-ics: %w", err)
				}
				defer f.Close()
				w = f
			}
			if _, err := io.WriteString(w, body); err != nil {
				return fmt.Errorf("export-ics: %w", err)
			}
			if out != "-" {
				appLog.Info("ics exported", "path", out, "events", len(items))
			}
			return nil
		},
	}

	window.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().DurationVar(&duration, "exact-duration", 30*time.Minute, "Length of events for exact-time items")
	return cmd
}
