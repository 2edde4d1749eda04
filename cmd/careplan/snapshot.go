package main

import (
	"github.com/spf13/cobra"

	"careplan/internal/capture"
)

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	var opts capture.Options

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the calendar page of a running server as a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if opts.URL == "" {
				opts.URL = "http://" + cfg.Listen + "/calendar"
			}
			if cfg.BasicAuth != nil {
				opts.Username = cfg.BasicAuth.Username
				opts.Password = cfg.BasicAuth.Password
			}
			return capture.CaptureCalendarPNG(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "Page to capture (default http://<listen>/calendar)")
	cmd.Flags().StringVar(&opts.OutputPath, "out", "calendar.png", "Output PNG path")
	cmd.Flags().IntVar(&opts.Width, "width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().BoolVar(&opts.Monochrome, "mono", false, "Reduce the PNG to black and white for e-ink readers")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", capture.DefaultTimeout, "Overall capture timeout")
	return cmd
}
