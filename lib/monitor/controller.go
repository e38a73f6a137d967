// Package monitor runs the poll cycle shared by the monitor tools: read
// status, check privileges and instrumentation, fetch the active view, render,
// sleep.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/jayjanssen/myq-mon/lib/counter"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"github.com/jayjanssen/myq-mon/lib/views"
	"go.uber.org/zap"
)

const (
	trxCountQuery = `SELECT COUNT(*) FROM information_schema.INNODB_TRX`
	hllQuery      = `SELECT COUNT FROM information_schema.INNODB_METRICS WHERE NAME = 'trx_rseg_history_len'`
)

// Quit keys
const (
	KeyQuit   = "q"
	KeyCtrlC  = "<C-c>"
	KeyEscape = "<Escape>"
)

// State of the poll loop
type State int

const (
	Running State = iota
	Stopped
)

// RowHook receives the rows of every fetched view
type RowHook func(view *views.View, rows []dbconn.Row) error

// Config is what differs between the tools
type Config struct {
	Tool     string
	Interval time.Duration
	Panel    Panel

	// Run the privilege gated INNODB_TRX count and history list length
	Gated bool

	// nil when the tool has no row views
	Views *views.Set

	OnRows RowHook

	// defaults to a context aware time.Sleep
	Sleep func(ctx context.Context, d time.Duration)
}

// Controller is the single poll loop of a tool
type Controller struct {
	cfg     Config
	q       dbconn.Querier
	profile *probe.ServerProfile
	sink    Sink
	keys    KeySource
	stop    *StopFlag
	logger  *zap.Logger

	differ   *counter.Differ
	selector *views.Selector
	state    State

	accessGranted   bool
	enableAttempted bool
}

// New builds a controller in the Running state
func New(cfg Config, q dbconn.Querier, profile *probe.ServerProfile, sink Sink, keys KeySource, stop *StopFlag, logger *zap.Logger) *Controller {
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	c := &Controller{
		cfg:     cfg,
		q:       q,
		profile: profile,
		sink:    sink,
		keys:    keys,
		stop:    stop,
		logger:  logger,
		differ:  counter.NewDiffer(),
		state:   Running,
	}
	if cfg.Views != nil {
		c.selector = views.NewSelector(cfg.Views)
	}
	return c
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// State is Running until the loop has ended
func (c *Controller) State() State {
	return c.state
}

// AccessGranted reports whether the gated query has ever succeeded
func (c *Controller) AccessGranted() bool {
	return c.accessGranted
}

// Mode is the active view mode
func (c *Controller) Mode() views.Mode {
	if c.selector == nil {
		return views.DefaultMode
	}
	return c.selector.Active()
}

// Prime takes the baseline reading of every counter
func (c *Controller) Prime(ctx context.Context) error {
	status, _, err := c.cfg.Panel.read(ctx, c.q)
	if err != nil {
		return fmt.Errorf("baseline status read: %w", err)
	}
	c.cfg.Panel.seed(status, c.differ)
	return nil
}

// Run loops until the stop flag is seen at the top of a cycle, ctx is done,
// or the connection is lost. The last case returns the error.
func (c *Controller) Run(ctx context.Context) error {
	defer func() { c.state = Stopped }()

	for {
		if c.stop.Stopped() || ctx.Err() != nil {
			c.logger.Debug("stopping")
			return nil
		}

		frame, err := c.Cycle(ctx)
		if err != nil {
			if dbconn.IsConnectionLost(err) {
				c.logger.Error("connection lost", zap.Error(err))
				return err
			}
			c.logger.Error("cycle failed, skipping render", zap.Error(err))
		}

		c.handleKey()

		if frame != nil {
			if err := c.sink.Render(frame); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}

		c.cfg.Sleep(ctx, c.cfg.Interval)
	}
}

// handleKey applies at most one pending key. A new mode takes effect on the
// next cycle.
func (c *Controller) handleKey() {
	if c.keys == nil {
		return
	}
	key, ok := c.keys.PollKey()
	if !ok {
		return
	}

	switch key {
	case KeyQuit, KeyCtrlC, KeyEscape:
		c.stop.Stop()
	default:
		if c.selector != nil && c.selector.Apply(key) {
			c.logger.Debug("view selected", zap.Stringer("mode", c.selector.Active()))
		}
	}
}

// Cycle collects one frame. An error means the frame must not be rendered.
func (c *Controller) Cycle(ctx context.Context) (*Frame, error) {
	frame := &Frame{
		Tool:     c.cfg.Tool,
		Host:     c.profile.DisplayName(),
		Version:  c.profile.DisplayVersion(),
		Vendor:   c.profile.Vendor,
		Time:     time.Now(),
		Interval: c.cfg.Interval,
		Gated:    c.cfg.Gated,
		Mode:     c.Mode(),
	}

	// status panel
	status, vars, err := c.cfg.Panel.read(ctx, c.q)
	if err != nil {
		return nil, err
	}
	frame.Status = c.cfg.Panel.values(status, vars, c.differ)

	if len(c.cfg.Panel.Sys) > 0 && c.profile.Vendor != probe.MariaDB {
		frame.Sys, err = c.cfg.Panel.sysValues(ctx, c.q)
		if err != nil {
			return nil, err
		}
	}

	if c.cfg.Gated {
		if err := c.gated(ctx, frame); err != nil {
			return nil, err
		}
	}

	if !c.profile.PerformanceSchema && c.cfg.Views != nil {
		frame.Notices = append(frame.Notices, MsgNoPerformanceSchema)
	}

	if c.selector != nil && c.accessGranted {
		if err := c.fetchView(ctx, frame); err != nil {
			return nil, err
		}
	}

	return frame, nil
}

// gated runs the privilege gated queries. A denial is shown and rechecked
// next cycle. Once a check succeeds AccessGranted stays true.
func (c *Controller) gated(ctx context.Context, frame *Frame) error {
	count, _, err := dbconn.Value(ctx, c.q, trxCountQuery)
	if dbconn.IsPrivilegeDenied(err) {
		c.logger.Debug("gated query denied", zap.Error(err))
		frame.AccessDenied = true
		frame.Notices = append(frame.Notices, MsgNoPrivilege)
		return nil
	}
	if err != nil {
		return err
	}
	c.accessGranted = true
	frame.TrxCount = formatNumber(count)

	hll, ok, err := dbconn.Value(ctx, c.q, hllQuery)
	switch {
	case dbconn.IsPrivilegeDenied(err):
		frame.HLL = "-"
	case err != nil:
		return err
	case !ok:
		frame.HLL = "-"
	default:
		frame.HLL = formatNumber(hll)
	}

	if c.needsInstrumentation() {
		c.checkInstrumentation(ctx)
	}
	return nil
}

func (c *Controller) needsInstrumentation() bool {
	if c.cfg.Views == nil || !c.profile.PerformanceSchema {
		return false
	}
	for _, mode := range c.cfg.Views.Modes() {
		if v, ok := c.cfg.Views.Lookup(mode, c.profile.VersionMajor); ok && v.RequiresInstrumentation {
			return true
		}
	}
	return false
}

// checkInstrumentation reads the mdl instrument until it shows enabled, and
// the first time it reads disabled makes the single enabling attempt.
func (c *Controller) checkInstrumentation(ctx context.Context) {
	if c.profile.MetadataLockInstrumentation() {
		return
	}
	enabled, err := probe.CheckMetadataLockInstrumentation(ctx, c.q, c.profile)
	if err != nil {
		c.logger.Debug("mdl instrumentation check failed", zap.Error(err))
		return
	}
	if !enabled {
		c.AttemptEnableInstrumentation(ctx)
	}
}

// AttemptEnableInstrumentation issues the mdl enabling UPDATE once per
// process. Its result is only logged, a later check picks up the change.
func (c *Controller) AttemptEnableInstrumentation(ctx context.Context) {
	if c.enableAttempted {
		return
	}
	c.enableAttempted = true

	if err := probe.EnableMetadataLockInstrumentation(ctx, c.q); err != nil {
		c.logger.Info("could not enable mdl instrumentation", zap.Error(err))
		return
	}
	c.logger.Info("enabled mdl instrumentation")
}

// fetchView runs the active view's query, or sets the placeholder when the
// view needs instrumentation that is off.
func (c *Controller) fetchView(ctx context.Context, frame *Frame) error {
	view, ok := c.selector.View(c.profile.VersionMajor)
	if !ok {
		frame.Placeholder = fmt.Sprintf("no %s view for %s", frame.Mode, c.profile.Version)
		return nil
	}
	frame.View = view

	if view.RequiresInstrumentation && !c.profile.MetadataLockInstrumentation() {
		frame.Placeholder = MsgNoMDLInstrumentation
		return nil
	}

	rows, err := c.q.Query(ctx, view.Query)
	if dbconn.IsPrivilegeDenied(err) {
		c.logger.Debug("view query denied", zap.Stringer("mode", view.Mode), zap.Error(err))
		frame.Placeholder = MsgNoPrivilege
		return nil
	}
	if err != nil {
		return err
	}
	frame.Rows = rows

	if c.cfg.OnRows != nil {
		if err := c.cfg.OnRows(view, rows); err != nil {
			c.logger.Error("row hook failed", zap.Error(err))
		}
	}
	return nil
}
