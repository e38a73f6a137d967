package main

import (
	"fmt"
	"os"

	"github.com/jayjanssen/myq-mon/lib/cliopts"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"github.com/jayjanssen/myq-mon/lib/session"
	"github.com/jayjanssen/myq-mon/lib/trxlog"
	"github.com/jayjanssen/myq-mon/lib/views"
)

// Current Version (passed in on build)
var build_version string
var build_timestamp string

func main() {
	os.Exit(run())
}

func run() int {
	tool := cliopts.TrxMon
	tool.Version, tool.Timestamp = build_version, build_timestamp

	app := session.App{
		Tool:      tool,
		Views:     "trxmon",
		MySQLOnly: true,
		Panel:     monitor.TrxMonPanel,
		Gated:     true,
		Setup:     openTrxLog,
	}
	return app.Run(os.Args[1:], os.Stdout, os.Stderr)
}

// openTrxLog starts the -f log, when given, with its header line
func openTrxLog(opts *cliopts.Options, set *views.Set, profile *probe.ServerProfile) (monitor.RowHook, func() error, error) {
	if opts.TrxLogFile == "" {
		return nil, nil, nil
	}
	view, ok := set.Lookup(views.Transactions, profile.VersionMajor)
	if !ok {
		return nil, nil, fmt.Errorf("no transactions view for %s", profile.Version)
	}
	w, err := trxlog.Open(opts.TrxLogFile, view)
	if err != nil {
		return nil, nil, err
	}
	return w.WriteRows, w.Close, nil
}
