package internal

import (
	"io"
	"os"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	out         io.Writer
	logOut      io.Writer
	interactive bool
	columns     int
	watch       bool
	now         func() time.Time
}

func newApplication(opts []Option) *application {
	app := &application{
		out:    os.Stdout,
		logOut: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where rendered listings are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithLogOutput sets where JSON logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithTerminal describes the output terminal. columns is its width, or 0
// when unknown.
func WithTerminal(interactive bool, columns int) Option {
	return func(a *application) {
		a.interactive = interactive
		a.columns = columns
	}
}

// WithWatch keeps Run alive, re-rendering after every vault change.
func WithWatch(watch bool) Option {
	return func(a *application) {
		a.watch = watch
	}
}

// WithClock overrides the clock used for dated files.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
