package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/jayjanssen/myq-mon/lib/clientconf"
	"github.com/jayjanssen/myq-mon/lib/cliopts"
	"github.com/jayjanssen/myq-mon/lib/logging"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"github.com/jayjanssen/myq-mon/lib/screen"
	"github.com/jayjanssen/myq-mon/lib/views"
	"go.uber.org/zap"
)

// Exit codes
const (
	OK int = iota
	FAILED
)

// SetupFunc runs once the server is probed and before the screen opens. It
// may return a row hook and a cleanup func, both optional.
type SetupFunc func(opts *cliopts.Options, set *views.Set, profile *probe.ServerProfile) (monitor.RowHook, func() error, error)

// App is a full-screen monitor tool
type App struct {
	Tool cliopts.Tool

	// name of the tool's embedded views, empty for panel only tools
	Views string

	// reject MariaDB after probing
	MySQLOnly bool

	Panel monitor.Panel
	Gated bool
	Setup SetupFunc
}

// ParseArgs handles help, version and usage errors. done means the tool should
// exit with code.
func ParseArgs(tool cliopts.Tool, args []string, stdout, stderr io.Writer) (opts *cliopts.Options, code int, done bool) {
	opts, err := cliopts.Parse(tool, args, stderr)
	switch {
	case err == nil:
		return opts, OK, false
	case errors.Is(err, cliopts.ErrHelp):
		return nil, OK, true
	case errors.Is(err, cliopts.ErrVersion):
		fmt.Fprintln(stdout, tool.VersionString())
		return nil, OK, true
	default:
		fmt.Fprintf(stderr, "%s: %v\nuse '%s --help' for help\n", tool.Name, err, tool.Name)
		return nil, FAILED, true
	}
}

// Run is the whole life of the tool. Everything it sets up is released before
// it returns the exit code.
func (a App) Run(args []string, stdout, stderr *os.File) int {
	opts, code, done := ParseArgs(a.Tool, args, stdout, stderr)
	if done {
		return code
	}

	logger, err := logging.New(a.Tool.Name, opts.DebugLog)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening debug log: %v\n", err)
		return FAILED
	}
	defer logger.Sync()

	var set *views.Set
	if a.Views != "" {
		if set, err = views.LoadDefaultViews(a.Views); err != nil {
			fmt.Fprintf(stderr, "Error loading views: %v\n", err)
			return FAILED
		}
	}

	if err := screen.Check(stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}

	ctx := context.Background()
	db, _, err := Connect(ctx, &opts.Conn, stderr, clientconf.TerminalPassword(int(os.Stdin.Fd())), logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}
	defer db.Close()

	profile, err := Probe(ctx, db, a.MySQLOnly, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}

	var hook monitor.RowHook
	if a.Setup != nil {
		var cleanup func() error
		hook, cleanup, err = a.Setup(opts, set, profile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return FAILED
		}
		if cleanup != nil {
			defer func() {
				if err := cleanup(); err != nil {
					logger.Error("cleanup", zap.Error(err))
				}
			}()
		}
	}

	stop := monitor.NewStopFlag()
	cancel := monitor.NotifyOnSignals(stop, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := monitor.Config{
		Tool:     a.Tool.Name,
		Interval: opts.Interval,
		Panel:    a.Panel,
		Gated:    a.Gated,
		Views:    set,
		OnRows:   hook,
	}

	scr, err := screen.Open()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}
	defer scr.Close()

	ctl := monitor.New(cfg, db, profile, scr, scr, stop, logger)
	if err := ctl.Prime(ctx); err != nil {
		scr.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}

	err = ctl.Run(ctx)
	scr.Close()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return FAILED
	}
	logger.Info("stopped")
	return OK
}
