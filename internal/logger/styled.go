package logger

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/thushan/llamadeck/theme"
)

// StyledLogger wraps slog.Logger with theme-aware message helpers
type StyledLogger struct {
	logger *slog.Logger
	Theme  *theme.Theme
}

func NewStyledLogger(logger *slog.Logger, theme *theme.Theme) *StyledLogger {
	return &StyledLogger{
		logger: logger,
		Theme:  theme,
	}
}

// NewDiscard is handy for tests that do not care about log output
func NewDiscard() *StyledLogger {
	return NewStyledLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), theme.Default())
}

func (sl *StyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *StyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *StyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *StyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

func (sl *StyledLogger) InfoWithCount(msg string, count int, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.NewStyle(sl.Theme.Counts).Sprint("(", count, ")"))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) InfoWithPath(msg string, path string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.NewStyle(sl.Theme.Path).Sprint(path))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) WarnWithPath(msg string, path string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.NewStyle(sl.Theme.Path).Sprint(path))
	sl.logger.Warn(styledMsg, args...)
}

func (sl *StyledLogger) ErrorWithPath(msg string, path string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.NewStyle(sl.Theme.Path).Sprint(path))
	sl.logger.Error(styledMsg, args...)
}

// InfoRole highlights the server role, e.g. "Server running in ROUTER mode"
func (sl *StyledLogger) InfoRole(prefix, role, suffix string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s %s", prefix, pterm.NewStyle(sl.Theme.Role, pterm.Bold).Sprint(role), suffix)
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) GetUnderlying() *slog.Logger {
	return sl.logger
}

func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{
		logger: sl.logger.With(args...),
		Theme:  sl.Theme,
	}
}
