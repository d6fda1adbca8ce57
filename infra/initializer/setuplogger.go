package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelStyle struct {
	level log.Level
	label string
	color string
}

var levelStyles = []levelStyle{
	{log.DebugLevel, "DBG", "#7E57C2"},
	{log.InfoLevel, "INF", "#04B575"},
	{log.WarnLevel, "WRN", "#EE6FF8"},
	{log.ErrorLevel, "ERR", "#FF6B6B"},
}

// SetupLogger builds the process logger from cfg, installs it as the slog
// default and returns it.
func SetupLogger(cfg *config.Log) *slog.Logger {
	return setupLogger(os.Stdout, cfg)
}

func setupLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05", Prefix: "[smartbank]"}
	}

	styles := log.DefaultStyles()
	for _, ls := range levelStyles {
		color := lipgloss.AdaptiveColor{Light: ls.color, Dark: ls.color}
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.label).
			Bold(true).
			Padding(0, 1).
			Foreground(color)
	}
	accent := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
	for _, key := range []string{"reference", "account_id", "kind", "error", "component"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(accent)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formatters := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"text":   log.TextFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
