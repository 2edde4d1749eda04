package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"careplan/internal/config"
	appLog "careplan/internal/log"
	"careplan/internal/schedule"
)

const defaultConfigPath = "/etc/careplan/config.yaml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "careplan",
		Short:        "Care-plan schedule engine and agenda server",
		Long:         "careplan expands a patient's activities and assessments into a dated agenda and serves it as JSON, HTML and iCalendar.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	root.AddCommand(
		newServeCmd(opts),
		newAgendaCmd(opts),
		newExportICSCmd(opts),
		newSnapshotCmd(opts),
		newCompleteCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies the logging settings.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := appLog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(level)
	appLog.SetFormat(cfg.LogFormat)

	appLog.Debug("effective config",
		"config_path", o.configPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"week_start", cfg.WeekStart,
		"refresh", cfg.RefreshCron,
		"plan_path", cfg.PlanPath,
		"logbook_path", cfg.LogbookPath,
	)
	return cfg, nil
}

// windowFlags selects the agenda window for the agenda and export-ics
// commands.
type windowFlags struct {
	date     string
	days     int
	backfill int
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.date, "date", "", "Reference day as yyyy-mm-dd (default today)")
	cmd.Flags().IntVar(&w.days, "days", 0, "Days shown from the reference day on (default horizon_days)")
	cmd.Flags().IntVar(&w.backfill, "backfill", -1, "Past days shown before the reference day (default backfill_days)")
}

// resolve fills unset flags from cfg and returns the reference instant:
// now, or now's clock time on --date.
func (w *windowFlags) resolve(cfg *config.Config, now time.Time) (time.Time, error) {
	if w.days <= 0 {
		w.days = cfg.HorizonDays
	}
	if w.backfill < 0 {
		w.backfill = cfg.BackfillDays
	}

	loc := cfg.Location()
	now = now.In(loc)
	if w.date == "" {
		return now, nil
	}
	d, err := schedule.ParseDayKey(w.date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be yyyy-mm-dd: %w", err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, loc), nil
}
