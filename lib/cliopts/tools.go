package cliopts

import "time"

// The monitor tools and their interval ranges
var (
	LockMon = Tool{
		Name:        "myq-lockmon",
		Description: "InnoDB transaction and lock monitor for MySQL and Aurora",
		Interval:    250 * time.Millisecond,
		MinInterval: 10 * time.Millisecond,
		MaxInterval: 2000 * time.Millisecond,
	}

	TrxMon = Tool{
		Name:        "myq-trxmon",
		Description: "running transaction monitor for MySQL and Aurora",
		Interval:    250 * time.Millisecond,
		MinInterval: 50 * time.Millisecond,
		MaxInterval: 2000 * time.Millisecond,
		TrxLog:      true,
	}

	Mon = Tool{
		Name:        "myq-mon",
		Description: "connection, thread and row activity monitor for MySQL, MariaDB and Aurora",
		Interval:    1000 * time.Millisecond,
		MinInterval: 100 * time.Millisecond,
		MaxInterval: 2000 * time.Millisecond,
	}

	Ping = Tool{
		Name:        "myq-ping",
		Description: "keeps a connection busy with pings until interrupted",
		Interval:    time.Second,
		Flood:       true,
	}
)
