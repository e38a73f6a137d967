package main

import (
	"os"

	"github.com/jayjanssen/myq-mon/lib/cliopts"
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
	tool := cliopts.LockMon
	tool.Version, tool.Timestamp = build_version, build_timestamp

	app := session.App{
		Tool:      tool,
		Views:     "lockmon",
		MySQLOnly: true,
		Panel:     monitor.LockMonPanel,
		Gated:     true,
	}
	return app.Run(os.Args[1:], os.Stdout, os.Stderr)
}
