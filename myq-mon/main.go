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
	tool := cliopts.Mon
	tool.Version, tool.Timestamp = build_version, build_timestamp

	// MariaDB is shown, the sys lines are left out for it
	app := session.App{
		Tool:  tool,
		Panel: monitor.ConnectionPanel,
	}
	return app.Run(os.Args[1:], os.Stdout, os.Stderr)
}
