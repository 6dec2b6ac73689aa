// Package console provides the leveled, colorized output sink used by all
// orchestration components.
//
// A single Sink is shared across workers. Every write takes the sink mutex for
// the duration of the whole message, so a multi-line colored block from one
// worker is never interleaved with another's. Components receive the sink at
// construction; there is no package-level default.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level controls which messages a Sink emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a log-level string (typically from AZDEMO_LOG_LEVEL) to a
// Level. Unknown or empty values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorViolet = lipgloss.Color("#8b5cf6")
	colorDim    = lipgloss.Color("#6b7280")

	debugStyle = lipgloss.NewStyle().Foreground(colorDim)
	infoStyle  = lipgloss.NewStyle()
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	errorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// Tag is an optional per-call prefix with its own color, used to attribute
// interleaved output to a specific cleanup worker.
type Tag struct {
	Prefix string
	Style  lipgloss.Style
}

// workerPalette is the fixed palette assigned round-robin to cleanup workers.
var workerPalette = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(colorBlue),
	lipgloss.NewStyle().Foreground(colorGreen),
	lipgloss.NewStyle().Foreground(colorCyan),
	lipgloss.NewStyle().Foreground(colorViolet),
}

// WorkerTag returns the tag for the i-th worker, cycling through the palette.
func WorkerTag(prefix string, i int) Tag {
	return Tag{
		Prefix: prefix,
		Style:  workerPalette[i%len(workerPalette)],
	}
}

// Sink is a leveled writer that is safe for concurrent use.
type Sink struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a sink writing to out, emitting messages at or above level.
func New(out io.Writer, level Level) *Sink {
	return &Sink{out: out, level: level}
}

// Verbose reports whether debug-level output is enabled. The command runner
// uses this to decide whether to inject the tool debug flag.
func (s *Sink) Verbose() bool {
	return s.level <= LevelDebug
}

// Printf writes a formatted message at the given level with an optional tag.
// A zero Tag writes untagged output.
func (s *Sink) Printf(level Level, tag Tag, format string, args ...any) {
	if level < s.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	style := styleFor(level)

	s.mu.Lock()
	defer s.mu.Unlock()
	for line := range strings.Lines(msg) {
		line = strings.TrimRight(line, "\n")
		if tag.Prefix != "" {
			fmt.Fprintf(s.out, "%s %s\n", tag.Style.Render("["+tag.Prefix+"]"), style.Render(line))
		} else {
			fmt.Fprintln(s.out, style.Render(line))
		}
	}
}

func (s *Sink) Debugf(format string, args ...any) { s.Printf(LevelDebug, Tag{}, format, args...) }
func (s *Sink) Infof(format string, args ...any)  { s.Printf(LevelInfo, Tag{}, format, args...) }
func (s *Sink) Warnf(format string, args ...any)  { s.Printf(LevelWarn, Tag{}, format, args...) }
func (s *Sink) Errorf(format string, args ...any) { s.Printf(LevelError, Tag{}, format, args...) }

func styleFor(level Level) lipgloss.Style {
	switch level {
	case LevelDebug:
		return debugStyle
	case LevelWarn:
		return warnStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
