package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"go.uber.org/zap"
)

// floodEvery is how often the counter is printed in flood mode
const floodEvery = 1000

// Server is what gets pinged
type Server interface {
	Ping(ctx context.Context) error
}

type pinger struct {
	db       Server
	stop     *monitor.StopFlag
	flood    bool
	interval time.Duration
	out      io.Writer
	errOut   io.Writer
	sleep    func(time.Duration)
	logger   *zap.Logger
}

// loop pings until the stop flag is set or a ping fails, and returns the
// number of successful pings.
func (p *pinger) loop(ctx context.Context) int64 {
	var count int64
	for !p.stop.Stopped() {
		if err := p.db.Ping(ctx); err != nil {
			p.logger.Error("ping failed", zap.Int64("count", count), zap.Error(err))
			fmt.Fprintln(p.errOut, reason(err))
			break
		}

		if !p.flood {
			fmt.Fprintf(p.out, "%s\r", humanize.Comma(count))
			p.sleep(p.interval)
		} else if count%floodEvery == 0 {
			fmt.Fprintf(p.out, "%s\r", humanize.Comma(count))
		}
		count++
	}
	return count
}

// reason explains a failed ping
func reason(err error) string {
	switch {
	case dbconn.IsCannotConnect(err):
		return fmt.Sprintf("Could not connect to MySQL server (error: %v).", err)
	case dbconn.IsConnectionLost(err):
		return fmt.Sprintf("MySQL server has gone away (error: %v).", err)
	default:
		return fmt.Sprintf("Ping to MySQL server exited with code: %d (%v)", dbconn.ErrorCode(err), err)
	}
}
