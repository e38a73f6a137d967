package monitor

import (
	"time"

	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"github.com/jayjanssen/myq-mon/lib/views"
)

// Inline messages for recoverable conditions
const (
	MsgNoPrivilege          = "no user privilege access"
	MsgNoPerformanceSchema  = "performance schema disabled"
	MsgNoMDLInstrumentation = "p_s metadata lock instrumentation disabled"
)

// Frame is everything one cycle hands to the Sink
type Frame struct {
	Tool     string
	Host     string
	Version  string
	Vendor   probe.Vendor
	Time     time.Time
	Interval time.Duration

	Status []StatusValue
	Sys    []StatusValue

	// Gated section: INNODB_TRX count and history list length
	Gated        bool
	AccessDenied bool
	TrxCount     string
	HLL          string

	// bold red lines under the header
	Notices []string

	Mode        views.Mode
	View        *views.View
	Rows        []dbconn.Row
	Placeholder string
}

// Sink draws frames
type Sink interface {
	Render(frame *Frame) error
}

// KeySource returns a pending key press without blocking
type KeySource interface {
	PollKey() (string, bool)
}
