package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitables/internal/config"
	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/stats"
	"github.com/verte-zerg/tuitables/internal/statsui"
	"github.com/verte-zerg/tuitables/internal/store"
)

const plainFactCount = 5

var (
	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsFacts       string
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", "", "user filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsFacts, "fact", "", "facts for per-fact curves, e.g. \"7x8,6x9\"")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text stats instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	facts, err := stats.ParseFacts(statsFacts)
	if err != nil {
		return fmt.Errorf("invalid --fact value: %w", err)
	}

	cfg := model.StatsConfig{
		User:        statsUser,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Facts:       facts,
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsPlain {
		return writePlainStats(context.Background(), cmd.OutOrStdout(), st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderFactTable(w, report.ItemAggsWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderGrid(w, report.ItemAggsWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	facts := cfg.Facts
	if len(facts) == 0 {
		facts = stats.TopFactsByFrequency(report.ItemAggsAll, plainFactCount)
	}
	if len(facts) == 0 {
		return nil
	}
	perSession, err := st.ListItemStatsBySession(ctx, report.SessionIDs(), facts)
	if err != nil {
		return fmt.Errorf("failed to load fact stats: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderFactCurves(w, report.Sessions, perSession, facts, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
