// Package main provides the CLI entrypoint for autoclick.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/autoclick/internal/clicker"
	"github.com/verte-zerg/autoclick/internal/config"
	"github.com/verte-zerg/autoclick/internal/history"
	"github.com/verte-zerg/autoclick/internal/hotkey"
	"github.com/verte-zerg/autoclick/internal/logging"
	"github.com/verte-zerg/autoclick/internal/model"
	"github.com/verte-zerg/autoclick/internal/platform"
	"github.com/verte-zerg/autoclick/internal/platform/robot"
	"github.com/verte-zerg/autoclick/internal/report"
	"github.com/verte-zerg/autoclick/internal/tui"
)

const (
	defaultLogLevel  = "debug"
	defaultReportDir = "."
	logTailLines     = 200
)

var (
	clickCount    int
	clickInterval int
	logLevel      string
	logPath       string
	reportDir     string
	globalHotkeys bool
	writeReport   bool
)

// options is the resolved configuration after merging the file and flags.
type options struct {
	Click         model.ClickConfig
	LogLevel      string
	LogPath       string
	ReportDir     string
	GlobalHotkeys bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "autoclick",
		Short:         "Repeated mouse clicker with click history reports",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runWindowCmd,
	}
	addClickFlags(rootCmd)
	rootCmd.Flags().BoolVar(&globalHotkeys, "global-hotkeys", false, "listen for F9/F10 system-wide, not only in the terminal")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addClickFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&clickCount, "count", model.DefaultClickCount, fmt.Sprintf("number of clicks (%d-%d)", model.MinClickCount, model.MaxClickCount))
	cmd.Flags().IntVar(&clickInterval, "interval", model.DefaultIntervalMs, fmt.Sprintf("milliseconds between clicks (%d-%d)", model.MinIntervalMs, model.MaxIntervalMs))
	cmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logPath, "log-file", logging.DefaultFile, "log file, opened in append mode")
	cmd.Flags().StringVar(&reportDir, "report-dir", defaultReportDir, "directory for click reports")
}

func loadOptions(cmd *cobra.Command) (options, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return options{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "count", &clickCount, fileCfg.Clicker.Count)
	applyIntConfig(cmd, "interval", &clickInterval, fileCfg.Clicker.Interval)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logPath, fileCfg.Log.Path)
	applyStringConfig(cmd, "report-dir", &reportDir, fileCfg.Report.Dir)
	applyBoolConfig(cmd, "global-hotkeys", &globalHotkeys, fileCfg.Hotkeys.Global)

	opts := options{
		Click:         model.ClickConfig{ClickCount: clickCount, IntervalMs: clickInterval},
		LogLevel:      logLevel,
		LogPath:       logPath,
		ReportDir:     reportDir,
		GlobalHotkeys: globalHotkeys,
	}
	if err := opts.Click.Validate(); err != nil {
		return options{}, err
	}
	if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
		return options{}, fmt.Errorf("--log-level: %w", err)
	}
	return opts, nil
}

func runWindowCmd(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the clicker window needs an interactive terminal; use `autoclick run` for headless clicking")
	}

	// stdout belongs to the alternate screen, so the console mirror goes to the in-window log pane.
	tail := logging.NewTail(logTailLines)
	log, err := logging.New(logging.Options{Level: opts.LogLevel, FilePath: opts.LogPath, Console: tail})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()
	defer guardPanics(log)

	log.Info("Starting application")
	setupPlatform(log)
	executor, err := robot.New()
	if err != nil {
		return fmt.Errorf("mouse automation unavailable: %w", err)
	}
	st, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open click history: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close click history", logging.Error(cerr))
		}
	}()

	window := tui.NewModel(tui.Options{
		Store:     st,
		Executor:  executor,
		Logger:    log,
		LogTail:   tail,
		Defaults:  opts.Click,
		ReportDir: opts.ReportDir,
	})
	program := tea.NewProgram(window, tea.WithAltScreen())

	if opts.GlobalHotkeys {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := hotkey.Listen(ctx, hotkey.DefaultBindings(), func(a hotkey.Action) {
				switch a {
				case hotkey.ActionStart:
					program.Send(tui.StartMsg{})
				case hotkey.ActionStop:
					program.Send(tui.StopMsg{})
				}
			})
			if err != nil {
				log.Error("Global hotkey listener stopped", logging.Error(err))
			}
		}()
		log.Info("Global hotkeys enabled")
	}

	log.Info("Application started successfully")
	if _, err := program.Run(); err != nil {
		log.Critical("Critical error in main", logging.Error(err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Click without the window; Ctrl+C stops",
		Args:  cobra.NoArgs,
		RunE:  runHeadlessCmd,
	}
	addClickFlags(cmd)
	cmd.Flags().BoolVar(&writeReport, "report", false, "write a click report when the run ends")
	return cmd
}

func runHeadlessCmd(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	log, err := logging.New(logging.Options{Level: opts.LogLevel, FilePath: opts.LogPath, Console: out})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()
	defer guardPanics(log)

	log.Info("Starting application")
	setupPlatform(log)
	executor, err := robot.New()
	if err != nil {
		return fmt.Errorf("mouse automation unavailable: %w", err)
	}
	st, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open click history: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close click history", logging.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runHeadless(ctx, st, executor, opts.Click, log)
	if err != nil {
		return err
	}
	if writeReport {
		if err := writeRunReport(st, opts.ReportDir, log); err != nil {
			return err
		}
	}
	if err := printRuns(out, st); err != nil {
		return err
	}
	if result.Err != nil {
		return fmt.Errorf("click run failed: %w", result.Err)
	}
	return nil
}

// runHeadless drives one worker to completion and records it in st.
func runHeadless(ctx context.Context, st *history.Store, executor clicker.Executor, cfg model.ClickConfig, log logging.Logger) (model.RunResult, error) {
	worker, err := clicker.NewWorker(cfg, clicker.Options{Executor: executor, Logger: log})
	if err != nil {
		return model.RunResult{}, err
	}
	runID, err := st.BeginRun(ctx, cfg, time.Now())
	if err != nil {
		return model.RunResult{}, fmt.Errorf("failed to record run: %w", err)
	}

	// Appends run on this goroutine, so the store sees events in emission order.
	res, err := clicker.Run(ctx, worker, func(ev model.ClickEvent) {
		if err := st.Append(context.Background(), runID, ev); err != nil {
			log.Error("Failed to record click", logging.Error(err))
		}
	})
	if err != nil {
		return model.RunResult{}, err
	}
	if err := st.FinishRun(context.Background(), runID, res, time.Now()); err != nil {
		log.Error("Failed to record run result", logging.Error(err))
	}
	return res, nil
}

func writeRunReport(st *history.Store, dir string, log logging.Logger) error {
	events, err := st.Events(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load click history: %w", err)
	}
	path, err := report.Write(dir, time.Now(), events)
	if errors.Is(err, report.ErrEmptyHistory) {
		log.Info("暂无点击记录！ No report written")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("报告已生成：" + path)
	return nil
}

func printRuns(w io.Writer, st *history.Store) error {
	runs, err := st.Runs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	for _, line := range report.RunTable(runs) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func setupPlatform(log logging.Logger) {
	applied, err := platform.EnableDPIAwareness()
	switch {
	case err != nil:
		log.Error("Failed to set DPI awareness", logging.Error(err))
	case applied:
		log.Info("DPI awareness set successfully")
	default:
		log.Debug("DPI awareness not applicable on this platform")
	}
}

// guardPanics logs an unrecovered panic with its stack and exits.
func guardPanics(log logging.Logger) {
	if r := recover(); r != nil {
		log.Critical(fmt.Sprintf("Critical error in main: %v", r), logging.Stack(debug.Stack()))
		_ = log.Sync()
		os.Exit(1)
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
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# autoclick configuration
# Uncomment a value to enable it. CLI flags override config values.

[clicker]
# count = %d              # Clicks per run (%d-%d)
# interval = %d         # Milliseconds between clicks (%d-%d)

[log]
# level = %q         # debug, info, warn, error
# path = %q  # Appended to on every start

[report]
# dir = %q             # Where click_report_*.txt files are written

[hotkeys]
# global = false          # F9/F10 work while other windows have focus
`,
		model.DefaultClickCount, model.MinClickCount, model.MaxClickCount,
		model.DefaultIntervalMs, model.MinIntervalMs, model.MaxIntervalMs,
		defaultLogLevel,
		logging.DefaultFile,
		defaultReportDir,
	)
}
