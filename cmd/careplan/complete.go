package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"careplan/internal/config"
	appLog "careplan/internal/log"
	"careplan/internal/logbook"
	"careplan/internal/schedule"
)

const defaultListDays = 7

func newCompleteCmd(root *rootOptions) *cobra.Command {
	var (
		source  string
		date    string
		comment string
		undo    bool
		list    bool
		since   string
	)

	cmd := &cobra.Command{
		Use:   "complete [scheduleId]",
		Short: "Record an occurrence as done in the logbook",
		Long: "complete marks one occurrence done. Name it by the scheduleId shown in " +
			"`agenda --format json`, or by --source and --date. --list prints recent entries.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cfg.LogbookPath == "" {
				return errors.New("logbook_path is not set in the config")
			}

			lb, err := logbook.Open(cfg.LogbookPath)
			if err != nil {
				return err
			}
			defer lb.Close()

			if list {
				return listCompletions(cmd.Context(), cmd.OutOrStdout(), lb, cfg, since, time.Now())
			}

			var id string
			switch {
			case len(args) == 1 && source == "":
				id = args[0]
			case len(args) == 0 && source != "" && date != "":
				day, err := schedule.ParseDayKey(date, cfg.Location())
				if err != nil {
					return fmt.Errorf("--date must be yyyy-mm-dd: %w", err)
				}
				id = schedule.ScheduleID(source, day)
			default:
				return errors.New("give either a scheduleId or both --source and --date")
			}

			out := cmd.OutOrStdout()
			if undo {
				prev, err := lb.Get(cmd.Context(), id)
				if errors.Is(err, logbook.ErrNotFound) {
					return fmt.Errorf("nothing to undo: no entry for %s", id)
				}
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "previous: %s\n", describeEntry(prev, cfg.Location())); err != nil {
					return err
				}
			}

			e := logbook.Entry{
				ScheduleID: id,
				SourceID:   source,
				Completed:  !undo,
				Comment:    comment,
				RecordedAt: time.Now(),
			}
			if err := lb.Record(cmd.Context(), e); err != nil {
				return err
			}
			appLog.Info("completion recorded", "schedule_id", id, "completed", e.Completed)

			verb := "completed"
			if undo {
				verb = "cleared"
			}
			_, err = fmt.Fprintf(out, "%s %s\n", verb, id)
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Activity or assessment id")
	cmd.Flags().StringVar(&date, "date", "", "Occurrence day as yyyy-mm-dd, used with --source")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-text note stored with the entry")
	cmd.Flags().BoolVar(&undo, "undo", false, "Clear an earlier completion")
	cmd.Flags().BoolVar(&list, "list", false, "List entries recorded since --since")
	cmd.Flags().StringVar(&since, "since", "", "First day listed as yyyy-mm-dd (default a week ago)")
	return cmd
}

// listCompletions prints one line per entry recorded on or after since.
func listCompletions(ctx context.Context, w io.Writer, lb *logbook.Logbook, cfg *config.Config, since string, now time.Time) error {
	loc := cfg.Location()
	from := cfg.Calendar().StartOfDay(now.In(loc)).AddDate(0, 0, -defaultListDays)
	if since != "" {
		d, err := schedule.ParseDayKey(since, loc)
		if err != nil {
			return fmt.Errorf("--since must be yyyy-mm-dd: %w", err)
		}
		from = d
	}

	entries, err := lb.List(ctx, from)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "no entries since %s\n", schedule.DayKeyOf(from))
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, describeEntry(e, loc)); err != nil {
			return err
		}
	}
	return nil
}

func describeEntry(e logbook.Entry, loc *time.Location) string {
	state := "done"
	if !e.Completed {
		state = "cleared"
	}
	line := fmt.Sprintf("%s %s %s", e.RecordedAt.In(loc).Format("2006-01-02 15:04"), state, e.ScheduleID)
	if e.SourceID != "" {
		line += " (" + e.SourceID + ")"
	}
	if e.Comment != "" {
		line += ": " + e.Comment
	}
	return line
}
