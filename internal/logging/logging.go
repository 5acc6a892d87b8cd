// Package logging builds the logrus loggers used by the recordgen CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "RECORDGEN_LOG_LEVEL"

// Options configure New.
type Options struct {
	Component string
	Output    io.Writer // defaults to os.Stderr
	Level     string    // logrus level name; defaults to "warning"
	Verbose   bool      // forces debug level
	JSON      bool
}

// New returns an entry tagged with the component name. Text output is
// colored only when the output is a terminal.
func New(opts Options) *logrus.Entry {
	logger := logrus.New()
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	logger.SetLevel(level(opts))

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		tty := isTerminal(out)
		logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:      tty,
			DisableColors:    !tty,
			DisableTimestamp: true,
		})
	}

	component := opts.Component
	if component == "" {
		component = "recordgen"
	}
	return logger.WithField("component", component)
}

func level(opts Options) logrus.Level {
	if opts.Verbose {
		return logrus.DebugLevel
	}
	name := opts.Level
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		name = env
	}
	if name == "" {
		return logrus.WarnLevel
	}
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
