package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"careplan/internal/agenda"
	"careplan/internal/config"
	"careplan/internal/ics"
	"careplan/internal/logbook"
	"careplan/internal/model"
	"careplan/internal/plan"
)

func newAgendaCmd(root *rootOptions) *cobra.Command {
	var (
		window    windowFlags
		importICS []string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the per-day agenda with due-status labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			a, err := buildAgenda(cmd.Context(), cfg, &window, importICS, time.Now())
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			case "text", "":
				out := cmd.OutOrStdout()
				return agenda.WriteStyled(out, a, stylesFor(out))
			default:
				return fmt.Errorf("unknown --format %q", format)
			}
		},
	}

	window.register(cmd)
	cmd.Flags().StringArrayVar(&importICS, "import-ics", nil, "ICS file whose events are shown alongside the plan (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

// stylesFor colors the text agenda only when w is an interactive terminal.
func stylesFor(w io.Writer) agenda.Styles {
	f, ok := w.(*os.File)
	if ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return agenda.TerminalStyles()
	}
	return agenda.PlainStyles()
}

// buildAgenda loads the plan, the logbook and any imported calendars and
// builds the agenda window selected by w.
func buildAgenda(ctx context.Context, cfg *config.Config, w *windowFlags, importICS []string, now time.Time) (agenda.Agenda, error) {
	ref, err := w.resolve(cfg, now)
	if err != nil {
		return agenda.Agenda{}, err
	}
	p, err := plan.Load(cfg.PlanPath)
	if err != nil {
		return agenda.Agenda{}, err
	}

	cal := cfg.Calendar()
	today := cal.StartOfDay(ref)
	var extra []model.ScheduledItem
	for _, path := range importICS {
		body, err := os.ReadFile(path)
		if err != nil {
			return agenda.Agenda{}, fmt.Errorf("import %s: %w", path, err)
		}
		src := ics.Source{ID: filepath.Base(path), Name: path}
		items, err := ics.ParseItems(src, body, ics.ImportOptions{
			Location:   ref.Location(),
			RangeStart: today.AddDate(0, 0, -w.backfill),
			RangeEnd:   today.AddDate(0, 0, w.days-1),
		})
		if err != nil {
			return agenda.Agenda{}, err
		}
		extra = append(extra, items...)
	}

	done, err := loggedCompletions(ctx, cfg)
	if err != nil {
		return agenda.Agenda{}, err
	}

	return agenda.Build(cal, p, ref, agenda.Options{
		Days:      w.days,
		Backfill:  w.backfill,
		Extra:     extra,
		Completed: done,
	}), nil
}

// loggedCompletions reads the completed set from the configured logbook.
// It returns nil when no logbook is configured.
func loggedCompletions(ctx context.Context, cfg *config.Config) (map[string]bool, error) {
	if cfg.LogbookPath == "" {
		return nil, nil
	}
	lb, err := logbook.Open(cfg.LogbookPath)
	if err != nil {
		return nil, err
	}
	defer lb.Close()
	return lb.CompletedSet(ctx)
}
