package tui

import (
	"io"
	"log/slog"
	"os"
)

// Theme captures optional prefixes the session applies when printing
// messages. Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is applied when WithTheme is not used.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "", ErrorPrefix: "✗ "}
}

// FileOpener opens a local file chosen for a file field and reports its size.
type FileOpener func(path string) (io.ReadCloser, int64, error)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput directs informational output of the default driver.
func WithOutput(out io.Writer) Option {
	return func(s *Session) {
		s.out = out
	}
}

// WithFileOpener replaces os.Open for file fields.
func WithFileOpener(open FileOpener) Option {
	return func(s *Session) {
		if open != nil {
			s.open = open
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func openLocal(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}
