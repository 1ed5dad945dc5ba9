// Package main provides the CLI entrypoint for tuitables.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitables/internal/config"
	"github.com/verte-zerg/tuitables/internal/drill"
	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/notify"
	"github.com/verte-zerg/tuitables/internal/store"
	"github.com/verte-zerg/tuitables/internal/tui"
)

const (
	defaultPolicy      = string(model.PolicyBand)
	defaultCurveWindow = 20
	defaultWeakTop     = 8
	defaultWeakWindow  = 20
)

var (
	practiceUser        string
	practiceMinTable    int
	practiceMaxTable    int
	practicePerQuestion float64
	practicePerQFloor   float64
	practicePerQCeiling float64
	practiceSeconds     int
	practicePolicy      string
	practiceCarryOver   bool
	practiceGraceMs     int
	practiceWebhookURL  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuitables",
		Short:         "TUI times-table trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&practiceUser, "user", "", "user name recorded with each session")
	flags.IntVar(&practiceMinTable, "min-table", drill.DefaultMinTable, "smallest table to practice (1-12)")
	flags.IntVar(&practiceMaxTable, "max-table", drill.DefaultMaxTable, "largest table to practice (1-12)")
	flags.Float64Var(&practicePerQuestion, "per-question", drill.DefaultPerQuestion, "initial seconds per question")
	flags.Float64Var(&practicePerQFloor, "per-question-floor", drill.DefaultPerQFloor, "lowest adapted seconds per question")
	flags.Float64Var(&practicePerQCeiling, "per-question-ceiling", drill.DefaultPerQCeiling, "highest adapted seconds per question")
	flags.IntVar(&practiceSeconds, "session-seconds", drill.DefaultTotalSeconds, "session length in seconds")
	flags.StringVar(&practicePolicy, "timer-policy", defaultPolicy, "per-question adaptation policy (band or half)")
	flags.BoolVar(&practiceCarryOver, "carry-over", true, "repeat items missed in the previous session")
	flags.IntVar(&practiceGraceMs, "grace-ms", int(drill.DefaultGrace/time.Millisecond), "correct-answer confirmation window in milliseconds")
	flags.StringVar(&practiceWebhookURL, "webhook-url", "", "POST the session summary to this URL")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRevisitCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	p := fileCfg.Practice
	applyStringConfig(cmd, "user", &practiceUser, p.User)
	applyIntConfig(cmd, "min-table", &practiceMinTable, p.MinTable)
	applyIntConfig(cmd, "max-table", &practiceMaxTable, p.MaxTable)
	applyFloatConfig(cmd, "per-question", &practicePerQuestion, p.PerQuestion)
	applyFloatConfig(cmd, "per-question-floor", &practicePerQFloor, p.PerQFloor)
	applyFloatConfig(cmd, "per-question-ceiling", &practicePerQCeiling, p.PerQCeiling)
	applyIntConfig(cmd, "session-seconds", &practiceSeconds, p.TotalSeconds)
	applyStringConfig(cmd, "timer-policy", &practicePolicy, p.TimerPolicy)
	applyBoolConfig(cmd, "carry-over", &practiceCarryOver, p.CarryOver)
	applyIntConfig(cmd, "grace-ms", &practiceGraceMs, p.GraceMs)
	applyStringConfig(cmd, "webhook-url", &practiceWebhookURL, p.WebhookURL)

	cfg := model.Config{
		User:         strings.TrimSpace(practiceUser),
		MinTable:     practiceMinTable,
		MaxTable:     practiceMaxTable,
		PerQuestion:  practicePerQuestion,
		PerQFloor:    practicePerQFloor,
		PerQCeiling:  practicePerQCeiling,
		TotalSeconds: practiceSeconds,
		Policy:       model.TimerPolicy(strings.ToLower(strings.TrimSpace(practicePolicy))),
		CarryOver:    practiceCarryOver,
		Grace:        time.Duration(practiceGraceMs) * time.Millisecond,
		WebhookURL:   strings.TrimSpace(practiceWebhookURL),
	}
	if _, err := drill.Normalize(cfg); err != nil {
		return configError(err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	device, err := st.LoadDeviceState(ctx)
	if err != nil {
		logErrf("failed to load device state: %v\n", err)
	}
	if device.HasPerQ && !cmd.Flags().Changed("per-question") {
		cfg.PerQuestion = device.PerQ
	}

	var carry *model.CarryOver
	if cfg.CarryOver {
		carry, err = st.LastCarryOver(ctx, cfg.User)
		if err != nil {
			logErrf("failed to load carry-over items: %v\n", err)
		}
	}

	session, err := drill.NewSession(cfg, nil)
	if err != nil {
		return configError(err)
	}
	notifier := notify.NewWebhookSender(notify.WebhookConfig{
		URL:      cfg.WebhookURL,
		DeviceID: device.DeviceID,
	})

	m := tui.NewModel(session, st, notifier, carry)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// configError maps core validation errors to the flags that caused them.
func configError(err error) error {
	switch {
	case errors.Is(err, drill.ErrInvalidRange):
		return fmt.Errorf("--min-table and --max-table must be between 1 and %d: %w", model.MaxMultiplier, err)
	case errors.Is(err, drill.ErrInvalidTimer):
		return fmt.Errorf("--per-question-floor must be > 0 and <= --per-question-ceiling: %w", err)
	case errors.Is(err, drill.ErrInvalidDuration):
		return fmt.Errorf("--session-seconds must be >= 0: %w", err)
	case errors.Is(err, drill.ErrInvalidPolicy):
		return fmt.Errorf("--timer-policy must be %q or %q: %w", model.PolicyBand, model.PolicyHalf, err)
	default:
		return err
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuitables configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# user = ""                    # Name recorded with each session
# min-table = %d                # Smallest table (1-12)
# max-table = %d               # Largest table (1-12)
# per-question = %.1f          # Initial seconds per question (later runs reuse the adapted value)
# per-question-floor = %.1f     # Lowest adapted seconds per question
# per-question-ceiling = %.1f  # Highest adapted seconds per question
# session-seconds = %d        # Session length
# timer-policy = %q         # "band" or "half"
# carry-over = true            # Repeat items missed in the previous session
# grace-ms = %d               # Correct-answer confirmation window
# webhook-url = ""             # POST the session summary here

[stats]
# last = 0                     # Limit to last N sessions (0 = all)
# curve-window = %d            # Moving average window
`,
		drill.DefaultMinTable,
		drill.DefaultMaxTable,
		drill.DefaultPerQuestion,
		drill.DefaultPerQFloor,
		drill.DefaultPerQCeiling,
		drill.DefaultTotalSeconds,
		defaultPolicy,
		drill.DefaultGrace.Milliseconds(),
		defaultCurveWindow,
	)
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
