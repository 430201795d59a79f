// Package console provides the slog handler the command line writes its
// diagnostics through.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LevelVerbose sits between debug and info.
const LevelVerbose = slog.Level(-2)

type Options struct {
	Debug   bool
	Verbose bool
	// Quiet suppresses everything below errors. Debug wins over Quiet.
	Quiet   bool
	NoColor bool
}

// Level is the minimum level the options let through.
func (o Options) Level() slog.Level {
	switch {
	case o.Debug:
		return slog.LevelDebug
	case o.Quiet:
		return slog.LevelError
	case o.Verbose:
		return LevelVerbose
	}
	return slog.LevelInfo
}

// Handler writes one "LEVEL: message key=value" line per record. Info and
// verbose records carry no prefix.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	colors map[slog.Level]*color.Color
	attrs  []slog.Attr
	group  string
}

// NewHandler returns a handler writing to w. Colors are used only when w is
// a terminal and neither NoColor nor NO_COLOR disable them.
func NewHandler(w io.Writer, opts Options) *Handler {
	enabled := !opts.NoColor && os.Getenv("NO_COLOR") == "" && isTerminal(w)

	colors := map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgCyan),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}
	for _, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Handler{mu: &sync.Mutex{}, w: w, level: opts.Level(), colors: colors}
}

// New returns a logger backed by NewHandler.
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if prefix := levelPrefix(r.Level); prefix != "" {
		b.WriteString(h.colorFor(r.Level).Sprint(prefix))
		b.WriteString(" ")
	}
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hh := *h
	hh.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		hh.attrs = append(hh.attrs, a)
	}
	return &hh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	hh := *h
	if h.group != "" {
		hh.group = h.group + "." + name
	} else {
		hh.group = name
	}
	return &hh
}

func (h *Handler) colorFor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return h.colors[slog.LevelError]
	case level >= slog.LevelWarn:
		return h.colors[slog.LevelWarn]
	}
	return h.colors[slog.LevelDebug]
}

func levelPrefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR:"
	case level >= slog.LevelWarn:
		return "WARNING:"
	case level >= LevelVerbose:
		return ""
	}
	return "DEBUG:"
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}

	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(v)
}

// Verbose logs msg at LevelVerbose.
func Verbose(log *slog.Logger, msg string, args ...any) {
	log.Log(context.Background(), LevelVerbose, msg, args...)
}
