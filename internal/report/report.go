// Package report writes click history reports.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/autoclick/internal/model"
)

// ErrEmptyHistory is returned when there is nothing to report.
var ErrEmptyHistory = errors.New("no clicks recorded")

const (
	title          = "自动点击报告"
	titleRuleWidth = 50
	blockRuleWidth = 30
)

// FileName returns the report file name for the given generation time.
func FileName(now time.Time) string {
	return "click_report_" + now.Format("20060102_150405") + ".txt"
}

// Render writes the report body for events, in order.
func Render(w io.Writer, events []model.ClickEvent) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%s\n\n", title, strings.Repeat("=", titleRuleWidth)); err != nil {
		return err
	}
	rule := strings.Repeat("-", blockRuleWidth)
	for _, ev := range events {
		if _, err := fmt.Fprintf(bw, "点击序号: %d\n点击时间: %s\n点击位置: %s\n%s\n",
			ev.Sequence, FormatTimestamp(ev.Timestamp), ev.Position, rule); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatTimestamp renders t as "2006-01-02 15:04:05.000000", dropping the
// fraction when it is zero at microsecond precision.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

// Write renders events into dir and returns the path of the new report.
// An empty history writes nothing and returns ErrEmptyHistory.
func Write(dir string, now time.Time, events []model.ClickEvent) (string, error) {
	if len(events) == 0 {
		return "", ErrEmptyHistory
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))

	tmpFile, err := os.CreateTemp(dir, "click_report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp report: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Render(tmpFile, events); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
