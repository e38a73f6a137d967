package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/jayjanssen/myq-mon/lib/clientconf"
	"github.com/jayjanssen/myq-mon/lib/cliopts"
	"github.com/jayjanssen/myq-mon/lib/logging"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"github.com/jayjanssen/myq-mon/lib/session"
)

// Current Version (passed in on build)
var build_version string
var build_timestamp string

func main() {
	os.Exit(run())
}

func run() int {
	tool := cliopts.Ping
	tool.Version, tool.Timestamp = build_version, build_timestamp

	opts, code, done := session.ParseArgs(tool, os.Args[1:], os.Stdout, os.Stderr)
	if done {
		return code
	}

	logger, err := logging.New(tool.Name, opts.DebugLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
		return session.FAILED
	}
	defer logger.Sync()

	ctx := context.Background()
	db, config, err := session.Connect(ctx, &opts.Conn, os.Stderr, clientconf.TerminalPassword(int(os.Stdin.Fd())), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return session.FAILED
	}
	defer db.Close()

	// pinned so a server restart is reported, not hidden by a reconnect
	conn, err := db.Conn(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return session.FAILED
	}
	defer conn.Close()

	stop := monitor.NewStopFlag()
	cancel := monitor.NotifyOnSignals(stop, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stdout, "pinging %s...\n", config.Addr)

	p := &pinger{
		db:       conn,
		stop:     stop,
		flood:    opts.Flood,
		interval: opts.Interval,
		out:      os.Stdout,
		errOut:   os.Stderr,
		sleep:    time.Sleep,
		logger:   logger,
	}
	p.loop(ctx)

	fmt.Fprintln(os.Stdout, "\nstopped")
	return session.OK
}
