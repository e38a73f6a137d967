// Package cliopts parses the command line shared by the monitor tools into an
// immutable Options value.
package cliopts

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jayjanssen/myq-mon/lib/clientconf"
)

var (
	// ErrHelp is returned when usage was requested and printed
	ErrHelp = errors.New("help requested")
	// ErrVersion is returned when the version was requested
	ErrVersion = errors.New("version requested")
	// ErrUsage wraps every invalid command line
	ErrUsage = errors.New("usage error")
)

// Tool describes one binary: its name and polling interval range
type Tool struct {
	Name        string
	Description string
	Version     string
	Timestamp   string

	Interval    time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration

	// Accept -f <logfile>
	TrxLog bool
	// Accept -f as a switch for flood mode
	Flood bool
}

// VersionString is what -v prints
func (t Tool) VersionString() string {
	return fmt.Sprintf("%s %s (%s)", t.Name, t.Version, t.Timestamp)
}

// Options is the parsed command line of a tool
type Options struct {
	Tool     Tool
	Conn     clientconf.Flags
	Interval time.Duration

	// transaction log file, only when Tool.TrxLog
	TrxLogFile string
	// zap debug log
	DebugLog string
	// no wait between iterations, only when Tool.Flood
	Flood bool
}

// Parse parses args (without the program name). Usage goes to out.
func Parse(tool Tool, args []string, out io.Writer) (*Options, error) {
	opts := &Options{Tool: tool}

	fs := flag.NewFlagSet(tool.Name, flag.ContinueOnError)
	fs.SetOutput(out)

	opts.Conn.Register(fs)

	intervalMs := int(tool.Interval.Milliseconds())
	if tool.MaxInterval > 0 {
		fs.IntVar(&intervalMs, "t", intervalMs,
			fmt.Sprintf("refresh interval in ms (%d-%d)", tool.MinInterval.Milliseconds(), tool.MaxInterval.Milliseconds()))
	}

	var help, version bool
	fs.BoolVar(&help, "help", false, "this help text")
	fs.BoolVar(&help, "i", false, "short for -help")
	fs.BoolVar(&version, "version", false, "print the version")
	fs.BoolVar(&version, "v", false, "short for -version")

	switch {
	case tool.TrxLog:
		fs.StringVar(&opts.TrxLogFile, "f", "", "append running transactions to this file")
	case tool.Flood:
		fs.BoolVar(&opts.Flood, "f", false, "flood: ping without waiting")
	}
	fs.StringVar(&opts.DebugLog, "log", "", "write a debug log to this file")

	fs.Usage = func() {
		fmt.Fprintf(out, "%s\n\n", tool.VersionString())
		fmt.Fprintf(out, "Usage:\n  %s -u <user> [flags]\n", tool.Name)
		if tool.Description != "" {
			fmt.Fprintf(out, "Description:\n  %s\n", tool.Description)
		}
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if help {
		fs.Usage()
		return nil, ErrHelp
	}
	if version {
		return nil, ErrVersion
	}

	if fs.NArg() != 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}
	if opts.Conn.User == "" {
		return nil, fmt.Errorf("%w: -u <user> is required", ErrUsage)
	}

	opts.Interval = tool.Interval
	if tool.MaxInterval > 0 {
		opts.Interval = ClampInterval(intervalMs, tool.MinInterval, tool.MaxInterval)
	}
	return opts, nil
}

// ClampInterval converts ms to a duration within [min, max]
func ClampInterval(ms int, min, max time.Duration) time.Duration {
	// compared in ms, ms * time.Millisecond can overflow
	if int64(ms) < min.Milliseconds() {
		return min
	}
	if int64(ms) > max.Milliseconds() {
		return max
	}
	return time.Duration(ms) * time.Millisecond
}
