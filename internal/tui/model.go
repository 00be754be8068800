// Package tui provides the Bubble Tea clicker window.
package tui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/autoclick/internal/clicker"
	"github.com/verte-zerg/autoclick/internal/history"
	"github.com/verte-zerg/autoclick/internal/logging"
	"github.com/verte-zerg/autoclick/internal/model"
	"github.com/verte-zerg/autoclick/internal/report"
)

const (
	focusCount = iota
	focusInterval
	focusStart
	focusStop
	focusReport
	focusSlots
)

const (
	tabClicker = iota
	tabHistory
)

const logPaneLines = 4

// StartMsg asks the window to start clicking, as if F9 was pressed.
type StartMsg struct{}

// StopMsg asks the window to stop the active run.
type StopMsg struct{}

type clickMsg struct {
	runID int64
	event model.ClickEvent
}

type finishedMsg struct {
	runID  int64
	result model.RunResult
}

type notice struct {
	title string
	body  string
	err   bool
}

// Options configure the window.
type Options struct {
	Store     *history.Store
	Executor  clicker.Executor
	Logger    logging.Logger
	LogTail   *logging.Tail
	Defaults  model.ClickConfig
	ReportDir string
	Clock     func() time.Time
	// Sleeper overrides the worker's interval wait.
	Sleeper func(context.Context, time.Duration) error
}

// Model implements the clicker window.
type Model struct {
	store     *history.Store
	executor  clicker.Executor
	log       logging.Logger
	logTail   *logging.Tail
	reportDir string
	clock     func() time.Time
	sleeper   func(context.Context, time.Duration) error
	// startWorker launches a configured worker; tests replace it.
	startWorker func(*clicker.Worker) error

	countBox    spinBox
	intervalBox spinBox
	focus       int
	tab         int

	worker       *clicker.Worker
	runID        int64
	runConfig    model.ClickConfig
	runClicks    int
	events       chan tea.Msg
	quit         chan struct{}
	startEnabled bool
	stopEnabled  bool

	status string
	notice *notice

	totalClicks  int
	runs         []model.RunSummary
	historyRows  []table.Row
	historyTable table.Model

	width  int
	height int
}

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	activeNavStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	buttonStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 2).Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("#8C8C8C"))
	focusedButton     = buttonStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A")).Bold(true)
	disabledButton    = buttonStyle.Copy().Foreground(lipgloss.Color("#4A4A4A")).BorderForeground(lipgloss.Color("#3A3A3A"))
	inputStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	focusedInputStyle = inputStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Align(lipgloss.Center)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A")).Padding(1, 2)
)

// NewModel constructs the clicker window.
func NewModel(opts Options) *Model {
	defaults := opts.Defaults
	if defaults.Validate() != nil {
		defaults = model.DefaultClickConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	reportDir := opts.ReportDir
	if reportDir == "" {
		reportDir = "."
	}
	log.Debug("Initializing clicker window")
	m := &Model{
		store:        opts.Store,
		executor:     opts.Executor,
		log:          log,
		logTail:      opts.LogTail,
		reportDir:    reportDir,
		clock:        clock,
		sleeper:      opts.Sleeper,
		startWorker:  (*clicker.Worker).Start,
		countBox:     newSpinBox("点击次数:", model.MinClickCount, model.MaxClickCount, defaults.ClickCount),
		intervalBox:  newSpinBox("点击间隔(毫秒):", model.MinIntervalMs, model.MaxIntervalMs, defaults.IntervalMs),
		quit:         make(chan struct{}),
		startEnabled: true,
		status:       "就绪",
		historyTable: newHistoryTable(),
	}
	m.setFocus(focusCount)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. A panic while handling msg is logged with its
// stack and ends the program, so the terminal is restored.
func (m *Model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Critical(fmt.Sprintf("Critical error in main: %v", r), logging.Stack(debug.Stack()))
			next, cmd = m, m.shutdown()
		}
	}()
	return m.update(msg)
}

func (m *Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeHistory()
		return m, nil
	case clickMsg:
		m.onClickEvent(msg)
		return m, m.waitForWorker()
	case finishedMsg:
		m.onWorkerFinished(msg)
		return m, nil
	case StartMsg:
		return m, m.startClicking()
	case StopMsg:
		m.stopClicking()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, m.shutdown()
	}
	if m.notice != nil {
		if key.Matches(msg, keys.Press) || msg.Type == tea.KeyEsc {
			m.notice = nil
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Start):
		return m, m.startClicking()
	case key.Matches(msg, keys.Stop):
		m.stopClicking()
		return m, nil
	}

	if m.tab == tabHistory {
		switch {
		case key.Matches(msg, keys.TabLeft), key.Matches(msg, keys.TabRight):
			m.tab = tabClicker
			return m, tea.ClearScreen
		default:
			var cmd tea.Cmd
			m.historyTable, cmd = m.historyTable.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, keys.Next):
		return m, m.moveFocus(1)
	case key.Matches(msg, keys.Prev):
		return m, m.moveFocus(-1)
	}

	if box := m.focusedBox(); box != nil {
		switch {
		case key.Matches(msg, keys.Up):
			box.step(1)
		case key.Matches(msg, keys.Down):
			box.step(-1)
		case key.Matches(msg, keys.PageUp):
			box.step(100)
		case key.Matches(msg, keys.PageDown):
			box.step(-100)
		case msg.Type == tea.KeyEnter:
			return m, m.moveFocus(1)
		default:
			return m, box.update(msg)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.TabLeft), key.Matches(msg, keys.TabRight):
		m.tab = tabHistory
		m.historyTable.SetRows(m.historyRows)
		m.historyTable.GotoBottom()
		return m, tea.ClearScreen
	case key.Matches(msg, keys.Press):
		return m, m.press()
	}
	return m, nil
}

func (m *Model) press() tea.Cmd {
	switch m.focus {
	case focusStart:
		return m.startClicking()
	case focusStop:
		m.stopClicking()
	case focusReport:
		m.generateReport()
	}
	return nil
}

// startClicking launches a worker with the current input values. It does
// nothing while a run is active.
func (m *Model) startClicking() tea.Cmd {
	if m.worker != nil || !m.startEnabled {
		return nil
	}
	m.log.Debug("Starting clicking")
	cfg := model.ClickConfig{ClickCount: m.countBox.Value(), IntervalMs: m.intervalBox.Value()}
	worker, err := clicker.NewWorker(cfg, clicker.Options{
		Executor: m.executor,
		Clock:    m.clock,
		Sleeper:  m.sleeper,
		Logger:   m.log,
	})
	if err != nil {
		m.log.Error("Failed to create click worker", logging.Error(err))
		m.status = "启动失败: " + err.Error()
		return nil
	}
	runID, err := m.store.BeginRun(context.Background(), cfg, m.clock())
	if err != nil {
		m.log.Error("Failed to record run", logging.Error(err))
		m.status = "启动失败: " + err.Error()
		return nil
	}

	events := make(chan tea.Msg, 64)
	quit := m.quit
	deliver := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-quit:
		}
	}
	worker.OnClick(func(ev model.ClickEvent) {
		deliver(clickMsg{runID: runID, event: ev})
	})
	worker.OnFinished(func(res model.RunResult) {
		deliver(finishedMsg{runID: runID, result: res})
	})
	if err := m.startWorker(worker); err != nil {
		m.log.Error("Failed to start click worker", logging.Error(err))
		m.status = "启动失败: " + err.Error()
		if ferr := m.store.FinishRun(context.Background(), runID, model.RunResult{Err: err}, m.clock()); ferr != nil {
			m.log.Error("Failed to record run result", logging.Error(ferr))
		}
		m.refreshRuns()
		return nil
	}

	m.worker = worker
	m.runID = runID
	m.runConfig = cfg
	m.runClicks = 0
	m.events = events
	m.startEnabled = false
	m.stopEnabled = true
	m.status = fmt.Sprintf("点击中 0/%d", cfg.ClickCount)
	m.refreshRuns()
	if m.focus == focusStart {
		m.setFocus(focusStop)
	}
	return m.waitForWorker()
}

// stopClicking requests cancellation of the active run, if any.
func (m *Model) stopClicking() {
	if m.worker == nil {
		return
	}
	m.log.Debug("Stopping clicking")
	m.worker.Stop()
	m.status = "正在停止..."
}

func (m *Model) onClickEvent(msg clickMsg) {
	if err := m.store.Append(context.Background(), msg.runID, msg.event); err != nil {
		m.log.Error("Failed to record click", logging.Error(err))
		return
	}
	if n, err := m.store.Len(context.Background()); err == nil {
		m.totalClicks = n
	} else {
		m.log.Error("Failed to count clicks", logging.Error(err))
	}
	m.historyRows = append(m.historyRows, historyRow(msg.event))
	if m.tab == tabHistory {
		m.historyTable.SetRows(m.historyRows)
		m.historyTable.GotoBottom()
	}
	if msg.runID == m.runID {
		m.runClicks = msg.event.Sequence
		m.status = fmt.Sprintf("点击中 %d/%d", m.runClicks, m.runConfig.ClickCount)
	}
}

// onWorkerFinished resets the controls. Calling it again is harmless.
func (m *Model) onWorkerFinished(msg finishedMsg) {
	m.log.Debug("Clicking finished")
	m.startEnabled = true
	m.stopEnabled = false
	if msg.runID != m.runID || m.worker == nil {
		return
	}
	m.worker = nil
	m.events = nil
	if err := m.store.FinishRun(context.Background(), msg.runID, msg.result, m.clock()); err != nil {
		m.log.Error("Failed to record run result", logging.Error(err))
	}
	switch {
	case msg.result.Err != nil:
		m.status = "已结束 (出错): " + msg.result.Err.Error()
	case msg.result.Cancelled:
		m.status = fmt.Sprintf("已停止: %d 次点击", msg.result.Clicks)
	default:
		m.status = fmt.Sprintf("已完成: %d 次点击", msg.result.Clicks)
	}
	if m.focus == focusStop {
		m.setFocus(focusStart)
	}
	m.refreshRuns()
}

// generateReport writes the history to a report file, or shows a notice
// when there is nothing to write.
func (m *Model) generateReport() {
	events, err := m.store.Events(context.Background())
	if err != nil {
		m.log.Error("Failed to load click history", logging.Error(err))
		m.notice = &notice{title: "错误", body: err.Error(), err: true}
		return
	}
	path, err := report.Write(m.reportDir, m.clock(), events)
	switch {
	case errors.Is(err, report.ErrEmptyHistory):
		m.notice = &notice{title: "提示", body: "暂无点击记录！"}
	case err != nil:
		m.log.Error("Failed to write report", logging.Error(err))
		m.notice = &notice{title: "错误", body: err.Error(), err: true}
	default:
		m.log.Info("Report generated", logging.String("path", path), logging.Int("clicks", len(events)))
		m.notice = &notice{title: "成功", body: "报告已生成：" + path}
	}
}

func (m *Model) shutdown() tea.Cmd {
	if m.worker != nil {
		m.worker.Stop()
	}
	select {
	case <-m.quit:
	default:
		close(m.quit)
	}
	return tea.Quit
}

func (m *Model) waitForWorker() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) refreshRuns() {
	runs, err := m.store.Runs(context.Background())
	if err != nil {
		m.log.Error("Failed to load runs", logging.Error(err))
		return
	}
	m.runs = runs
}

func (m *Model) focusedBox() *spinBox {
	switch m.focus {
	case focusCount:
		return &m.countBox
	case focusInterval:
		return &m.intervalBox
	}
	return nil
}

func (m *Model) focusEnabled(f int) bool {
	switch f {
	case focusStart:
		return m.startEnabled
	case focusStop:
		return m.stopEnabled
	}
	return true
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	next := m.focus
	for i := 0; i < focusSlots; i++ {
		next = (next + delta + focusSlots) % focusSlots
		if m.focusEnabled(next) {
			break
		}
	}
	return m.setFocus(next)
}

func (m *Model) setFocus(f int) tea.Cmd {
	m.countBox.blur()
	m.intervalBox.blur()
	m.focus = f
	if box := m.focusedBox(); box != nil {
		return box.focus()
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.notice != nil {
		body = m.renderNotice()
	} else if m.tab == tabHistory {
		body = m.renderHistory()
	} else {
		body = m.renderClicker()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), body)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - footerHeight
	if bodyHeight < 1 {
		return content
	}
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content) + "\n" + footer
}

func (m *Model) renderTabs() string {
	tabs := []string{"点击器", "历史记录"}
	parts := []string{titleStyle.Render("自动点击器") + "  "}
	for i, tab := range tabs {
		if i == m.tab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderClicker() string {
	labelWidth := maxInt(lipgloss.Width(m.countBox.label), lipgloss.Width(m.intervalBox.label))
	inputs := lipgloss.JoinVertical(lipgloss.Left,
		m.countBox.view(labelWidth),
		m.intervalBox.view(labelWidth),
	)
	controls := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderButton("开始点击", focusStart, m.startEnabled),
		" ",
		m.renderButton("停止点击", focusStop, m.stopEnabled),
	)
	reportBtn := m.renderButton("生成报告", focusReport, true)
	status := statusStyle.Render("状态: " + m.status)
	if strings.HasPrefix(m.status, "已结束 (出错)") || strings.HasPrefix(m.status, "启动失败") {
		status = errorStyle.Render("状态: " + m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		inputs,
		controls,
		reportBtn,
		helpStyle.Render(shortcutHelp()),
		"",
		status,
	)
}

func (m *Model) renderButton(label string, f int, enabled bool) string {
	switch {
	case !enabled:
		return disabledButton.Render(label)
	case m.focus == f:
		return focusedButton.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func (m *Model) renderNotice() string {
	title := titleStyle.Render(m.notice.title)
	body := m.notice.body
	if m.notice.err {
		body = errorStyle.Render(body)
	}
	hint := footerStyle.Render("按 Enter 关闭")
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
}

func (m *Model) renderFooter() string {
	var lines []string
	if m.logTail != nil {
		tail := m.logTail.Lines()
		if len(tail) > logPaneLines {
			tail = tail[len(tail)-logPaneLines:]
		}
		for _, line := range tail {
			if m.width > 0 {
				line = truncateLine(line, m.width)
			}
			lines = append(lines, footerStyle.Render(line))
		}
	}
	segments := []string{fmt.Sprintf("Runs %d", len(m.runs)), fmt.Sprintf("Clicks %d", m.totalClicks)}
	if m.worker != nil {
		segments = append(segments, fmt.Sprintf("Running %d/%d", m.runClicks, m.runConfig.ClickCount))
	} else if n := len(m.runs); n > 0 {
		last := m.runs[n-1]
		segments = append(segments, fmt.Sprintf("Last %s %d/%d", report.RunStatus(last), last.Clicks, last.Config.ClickCount))
	}
	lines = append(lines, footerStyle.Render(strings.Join(segments, "  ")))
	return joinLines(lines)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
