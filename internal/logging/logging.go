package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultLogDir  = ".local/state/miya"
	DefaultLogFile = "openclaw-adapter.log"
)

var (
	Logger  = zerolog.Nop()
	logFile *os.File
	out     io.Writer = io.Discard
)

// Options configures Init. Zero values select the defaults.
type Options struct {
	Level string // zerolog level name, "info" when empty
	Path  string // log file, ~/.local/state/miya/openclaw-adapter.log when empty
}

// timestampHook adds timestamp at the end of each log event
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// Init initializes the logging system with zerolog. Stdout is reserved for the
// response envelope, so logs only ever go to a file. On error the logger stays
// disabled.
func Init(opts Options) error {
	path := opts.Path
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), DefaultLogDir, DefaultLogFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logFile = f

	level := zerolog.InfoLevel
	if opts.Level != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil {
			level = l
		}
	}
	zerolog.SetGlobalLevel(level)

	// Configure field names
	zerolog.MessageFieldName = "msg"

	out = logFile
	Logger = zerolog.New(logFile).Hook(timestampHook{}).With().Int("pid", os.Getpid()).Logger()

	return nil
}

// InitWriter points the logger at w. Used by tests and the call subcommand's --debug flag.
func InitWriter(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	zerolog.MessageFieldName = "msg"
	out = w
	Logger = zerolog.New(w).Hook(timestampHook{})
}

// Writer returns the destination logs are written to
func Writer() io.Writer {
	return out
}

// Close closes the log file
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	Logger = zerolog.Nop()
	out = io.Discard
}

// Debug returns a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}
