package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the pretty text handler.
//
//nolint:gochecknoglobals
var (
	styleTime  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// prettyHandler is a colorized text handler for log messages.
type prettyHandler struct {
	opts       slog.HandlerOptions
	mu         *sync.Mutex
	w          io.Writer
	timeLayout string
	attrs      []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	timeLayout string,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		mu:         &sync.Mutex{},
		w:          w,
		timeLayout: timeLayout,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() && h.timeLayout != "" {
		buf.WriteString(styleTime.Render(r.Time.Format(h.timeLayout)))
		buf.WriteByte(' ')
	}

	buf.WriteString(levelStyle(r.Level).Render(levelTag(r.Level)))
	buf.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		buf.WriteString(styleTime.Render(
			fmt.Sprintf("%s:%d", frame.File, frame.Line)))
		buf.WriteByte(' ')
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		writeAttr(buf, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *prettyHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; keys keep their bare names.
	return h
}

func writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(buf, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(styleKey.Render(a.Key + "="))

	val := a.Value.String()
	if needsQuoting(val) {
		val = strconv.Quote(val)
	}

	buf.WriteString(val)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		if r == ' ' || r == '"' || r == '=' || r < ' ' {
			return true
		}
	}

	return false
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WRN"
	case level >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styleError
	case level >= slog.LevelWarn:
		return styleWarn
	case level >= slog.LevelInfo:
		return styleInfo
	default:
		return styleDebug
	}
}
