package monitor

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/dbconn/fakedb"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"github.com/jayjanssen/myq-mon/lib/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	mdlQuery  = `SELECT ENABLED FROM performance_schema.setup_instruments WHERE NAME = 'wait/lock/metadata/sql/mdl'`
	mdlEnable = `UPDATE performance_schema.setup_instruments SET ENABLED = 'YES' WHERE NAME = 'wait/lock/metadata/sql/mdl'`
)

func row(cols ...string) dbconn.Row {
	r := make(dbconn.Row, len(cols))
	for i, col := range cols {
		r[i] = fakedb.Str(col)
	}
	return r
}

func mysql80() *probe.ServerProfile {
	return &probe.ServerProfile{
		Vendor:            probe.MySQL,
		VersionMajor:      8,
		Version:           "8.0.34",
		Hostname:          "db1",
		PerformanceSchema: true,
	}
}

func lockmonViews(t *testing.T) *views.Set {
	set, err := views.LoadDefaultViews("lockmon")
	require.NoError(t, err)
	return set
}

func viewQuery(t *testing.T, set *views.Set, mode views.Mode) string {
	v, ok := set.Lookup(mode, 8)
	require.True(t, ok)
	return v.Query
}

// lockmonDB answers every query of a lock monitor cycle on a healthy server
func lockmonDB(t *testing.T, set *views.Set, questions string) *fakedb.DB {
	db := fakedb.New().
		Set(statusQuery,
			row("Threads_connected", "5"),
			row("Threads_running", "2"),
			row("Questions", questions)).
		SetValue(trxCountQuery, "3").
		SetValue(hllQuery, "1234").
		SetValue(mdlQuery, "YES")
	for _, mode := range set.Modes() {
		db.Set(viewQuery(t, set, mode))
	}
	return db
}

type recordingSink struct {
	frames   []*Frame
	onRender func(n int)
}

func (s *recordingSink) Render(frame *Frame) error {
	s.frames = append(s.frames, frame)
	if s.onRender != nil {
		s.onRender(len(s.frames))
	}
	return nil
}

type scriptedKeys struct {
	keys []string
}

func (k *scriptedKeys) PollKey() (string, bool) {
	if len(k.keys) == 0 {
		return "", false
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key, key != ""
}

func noSleep(context.Context, time.Duration) {}

func newLockmon(db dbconn.Querier, set *views.Set, profile *probe.ServerProfile, sink Sink, keys KeySource, stop *StopFlag) *Controller {
	cfg := Config{
		Tool:     "myq-lockmon",
		Interval: 250 * time.Millisecond,
		Panel:    LockMonPanel,
		Gated:    true,
		Views:    set,
		Sleep:    noSleep,
	}
	return New(cfg, db, profile, sink, keys, stop, zap.NewNop())
}

func statusValue(t *testing.T, frame *Frame, label string) string {
	for _, v := range frame.Status {
		if v.Label == label {
			return v.Value
		}
	}
	t.Fatalf("no status line %q", label)
	return ""
}

func TestPrimeSeedsCounters(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "100000")
	c := newLockmon(db, set, mysql80(), &recordingSink{}, nil, NewStopFlag())

	require.NoError(t, c.Prime(context.Background()))

	db.Set(statusQuery, row("Threads_connected", "5"), row("Threads_running", "2"), row("Questions", "100250"))
	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "250", statusValue(t, frame, "queries"))
	assert.Equal(t, "5", statusValue(t, frame, "threads connected"))
	assert.Equal(t, "3", frame.TrxCount)
	assert.Equal(t, "1,234", frame.HLL)
	assert.Equal(t, "db1", frame.Host)
}

func TestCounterResetClampsToZero(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "5000")
	c := newLockmon(db, set, mysql80(), &recordingSink{}, nil, NewStopFlag())
	require.NoError(t, c.Prime(context.Background()))

	db.Set(statusQuery, row("Questions", "10"))
	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0", statusValue(t, frame, "queries"))
	assert.Equal(t, "-", statusValue(t, frame, "threads connected"))
}

func TestPrivilegeDenied(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").SetErr(trxCountQuery, fakedb.Denied())
	c := newLockmon(db, set, mysql80(), &recordingSink{}, nil, NewStopFlag())

	for i := 0; i < 3; i++ {
		frame, err := c.Cycle(context.Background())
		require.NoError(t, err)
		assert.True(t, frame.AccessDenied)
		assert.Contains(t, frame.Notices, MsgNoPrivilege)
		assert.Empty(t, frame.Rows)
		assert.False(t, c.AccessGranted())
	}

	// rechecked every cycle, the view query never ran
	assert.Equal(t, 3, db.Count("COUNT(*) FROM information_schema.INNODB_TRX"))
	assert.Equal(t, 0, db.Count("events_statements_current"))
	assert.Equal(t, 0, db.Count("trx_rseg_history_len"))
}

func TestPrivilegeGrantedLater(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").SetErr(trxCountQuery, fakedb.Denied())
	c := newLockmon(db, set, mysql80(), &recordingSink{}, nil, NewStopFlag())

	_, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.False(t, c.AccessGranted())

	db.SetValue(trxCountQuery, "0")
	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.True(t, c.AccessGranted())
	assert.False(t, frame.AccessDenied)

	// once granted, a later denial only shows the notice
	db.SetErr(trxCountQuery, fakedb.Denied())
	frame, err = c.Cycle(context.Background())
	require.NoError(t, err)
	assert.True(t, c.AccessGranted())
	assert.True(t, frame.AccessDenied)
	assert.NotNil(t, frame.View)
}

func TestInstrumentationPlaceholder(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").SetValue(mdlQuery, "NO")
	keys := &scriptedKeys{keys: []string{views.KeyRight}}
	c := newLockmon(db, set, mysql80(), &recordingSink{}, keys, NewStopFlag())
	ctx := context.Background()

	// first cycle on transactions, key selects metadata locks for the next one
	_, err := c.Cycle(ctx)
	require.NoError(t, err)
	c.handleKey()
	require.Equal(t, views.MetadataLocks, c.Mode())

	db.Reset()
	for i := 0; i < 3; i++ {
		frame, err := c.Cycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, views.MetadataLocks, frame.Mode)
		assert.Equal(t, MsgNoMDLInstrumentation, frame.Placeholder)
		assert.Empty(t, frame.Rows)
	}

	assert.Equal(t, 0, db.Count("performance_schema.metadata_locks"))
	assert.Empty(t, db.Execs(), "enable attempted more than once")
	assert.False(t, c.profile.MetadataLockInstrumentation())
}

func TestInstrumentationEnabledOnce(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").
		SetValue(mdlQuery, "NO").
		SetExecErr(&mysql.MySQLError{Number: 1142, Message: "UPDATE command denied"})
	c := newLockmon(db, set, mysql80(), &recordingSink{}, nil, NewStopFlag())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Cycle(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{mdlEnable}, db.Execs())

	// an administrator enables it, the next cycle sees it and it sticks
	db.SetValue(mdlQuery, "YES")
	_, err := c.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, c.profile.MetadataLockInstrumentation())

	db.SetValue(mdlQuery, "NO")
	_, err = c.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, c.profile.MetadataLockInstrumentation())
}

func TestMetadataLocksByVersion(t *testing.T) {
	set := lockmonViews(t)
	profile := mysql80()
	profile.VersionMajor = 5
	profile.Version = "5.7.42"

	v57, ok := set.Lookup(views.MetadataLocks, 5)
	require.True(t, ok)
	db := lockmonDB(t, set, "1").Set(v57.Query, row("TABLE", "shop", "orders", "SHARED_READ", "TRANSACTION", "GRANTED", "42"))

	keys := &scriptedKeys{keys: []string{views.KeyRight}}
	c := newLockmon(db, set, profile, &recordingSink{}, keys, NewStopFlag())
	_, err := c.Cycle(context.Background())
	require.NoError(t, err)
	c.handleKey()

	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, v57, frame.View)
	require.Len(t, frame.Rows, 1)
	assert.Equal(t, 0, db.Count("performance_schema.data_locks"))
}

func TestRunKeyAppliesNextCycle(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1")
	stop := NewStopFlag()
	sink := &recordingSink{onRender: func(n int) {
		if n == 3 {
			stop.Stop()
		}
	}}
	keys := &scriptedKeys{keys: []string{views.KeyDown, "", views.KeyLeft}}
	c := newLockmon(db, set, mysql80(), sink, keys, stop)

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, sink.frames, 3)

	assert.Equal(t, views.Transactions, sink.frames[0].Mode)
	assert.Equal(t, views.InnodbLockWaits, sink.frames[1].Mode)
	assert.Equal(t, views.InnodbLockWaits, sink.frames[2].Mode)
	assert.Equal(t, views.TableLockWaits, c.Mode())
	assert.Equal(t, Stopped, c.State())
}

func TestRunStopsAtTopOfCycle(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1")
	stop := NewStopFlag()

	// the flag set mid cycle still lets that cycle finish and render
	sink := &recordingSink{onRender: func(n int) { stop.Stop() }}
	c := newLockmon(db, set, mysql80(), sink, nil, stop)

	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, sink.frames, 1)
	assert.Equal(t, Stopped, c.State())

	// already stopped: no queries at all
	db.Reset()
	c = newLockmon(db, set, mysql80(), sink, nil, stop)
	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, db.Queries())
}

func TestRunQuitKey(t *testing.T) {
	set := lockmonViews(t)
	stop := NewStopFlag()
	sink := &recordingSink{}
	c := newLockmon(lockmonDB(t, set, "1"), set, mysql80(), sink, &scriptedKeys{keys: []string{KeyQuit}}, stop)

	require.NoError(t, c.Run(context.Background()))
	assert.True(t, stop.Stopped())
	assert.Len(t, sink.frames, 1)
}

func TestRunConnectionLost(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").SetErr(statusQuery, mysql.ErrInvalidConn)
	sink := &recordingSink{}
	c := newLockmon(db, set, mysql80(), sink, nil, NewStopFlag())

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, dbconn.IsConnectionLost(err))
	assert.Empty(t, sink.frames)
	assert.Equal(t, Stopped, c.State())
}

func TestRunTransientErrorSkipsRender(t *testing.T) {
	set := lockmonViews(t)
	db := lockmonDB(t, set, "1").SetErr(hllQuery, errors.New("Lock wait timeout exceeded"))
	stop := NewStopFlag()
	sink := &recordingSink{onRender: func(int) { stop.Stop() }}

	c := newLockmon(db, set, mysql80(), sink, nil, stop)
	cycles := 0
	c.cfg.Sleep = func(context.Context, time.Duration) {
		cycles++
		if cycles == 2 {
			db.SetValue(hllQuery, "7")
		}
	}

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, sink.frames, 1)
	assert.Equal(t, "7", sink.frames[0].HLL)
	assert.Equal(t, 3, db.Count("trx_rseg_history_len"))
}

func TestPerformanceSchemaNotice(t *testing.T) {
	set := lockmonViews(t)
	profile := mysql80()
	profile.PerformanceSchema = false
	db := lockmonDB(t, set, "1")
	c := newLockmon(db, set, profile, &recordingSink{}, nil, NewStopFlag())

	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.Contains(t, frame.Notices, MsgNoPerformanceSchema)
	assert.Equal(t, 0, db.Count("setup_instruments"))
}

func connectionDB() *fakedb.DB {
	return fakedb.New().
		Set(statusQuery, row("Threads_connected", "10"), row("Questions", "500"), row("Innodb_rows_read", "9000")).
		Set(variablesQuery, row("max_connections", "151"), row("thread_cache_size", "9")).
		SetValue(ConnectionPanel.Sys[0].Query, "2").
		SetValue(ConnectionPanel.Sys[1].Query, "99.50").
		SetValue(ConnectionPanel.Sys[2].Query, "12.25")
}

func newConnectionMon(db dbconn.Querier, profile *probe.ServerProfile) *Controller {
	cfg := Config{
		Tool:     "myq-mon",
		Interval: time.Second,
		Panel:    ConnectionPanel,
		Sleep:    noSleep,
	}
	return New(cfg, db, profile, &recordingSink{}, nil, NewStopFlag(), zap.NewNop())
}

func TestConnectionPanel(t *testing.T) {
	db := connectionDB()
	c := newConnectionMon(db, mysql80())
	require.NoError(t, c.Prime(context.Background()))

	db.Set(statusQuery, row("Threads_connected", "11"), row("Questions", "1700"), row("Innodb_rows_read", "9100"))
	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "11", statusValue(t, frame, "threads connected"))
	assert.Equal(t, "1,200", statusValue(t, frame, "queries"))
	assert.Equal(t, "100", statusValue(t, frame, "rows read"))
	assert.Equal(t, "151", statusValue(t, frame, "max connections"))
	assert.Equal(t, "-", statusValue(t, frame, "aborted clients"))

	require.Len(t, frame.Sys, 3)
	assert.Equal(t, "99.50%", frame.Sys[1].Value)
	assert.Equal(t, "12.25 hrs", frame.Sys[2].Value)
	assert.False(t, frame.Gated)
	assert.Equal(t, 0, db.Count("INNODB_TRX"))
}

func TestConnectionPanelMariaDB(t *testing.T) {
	db := connectionDB()
	profile := mysql80()
	profile.Vendor = probe.MariaDB
	c := newConnectionMon(db, profile)

	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, frame.Sys)
	assert.Equal(t, 0, db.Count("sys.metrics"))
}

func TestConnectionPanelSysDenied(t *testing.T) {
	db := connectionDB().SetErr(ConnectionPanel.Sys[0].Query, fakedb.Denied())
	c := newConnectionMon(db, mysql80())

	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	require.Len(t, frame.Sys, 2)
	assert.Equal(t, "BP hit rate", frame.Sys[0].Label)
}

func TestRowHook(t *testing.T) {
	set, err := views.LoadDefaultViews("trxmon")
	require.NoError(t, err)
	v, _ := set.Lookup(views.Transactions, 8)

	db := fakedb.New().
		SetValue(trxCountQuery, "1").
		SetValue(hllQuery, "5").
		Set(v.Query, row("48", "12", "100", "4", "2", "1", "0", "1", "0.0012", "2024-01-01 10:00:00", "app", "fetching rows", "SELECT 1"))

	var hooked []dbconn.Row
	cfg := Config{
		Tool:     "myq-trxmon",
		Interval: 250 * time.Millisecond,
		Panel:    TrxMonPanel,
		Gated:    true,
		Views:    set,
		Sleep:    noSleep,
		OnRows: func(view *views.View, rows []dbconn.Row) error {
			hooked = append(hooked, rows...)
			return nil
		},
	}
	c := New(cfg, db, mysql80(), &recordingSink{}, nil, NewStopFlag(), zap.NewNop())

	frame, err := c.Cycle(context.Background())
	require.NoError(t, err)
	require.Len(t, frame.Rows, 1)
	assert.Len(t, hooked, 1)

	// no status panel, no instrumentation dependent views
	assert.Equal(t, 0, db.Count("SHOW GLOBAL STATUS"))
	assert.Equal(t, 0, db.Count("setup_instruments"))
}

func TestNotifyOnSignals(t *testing.T) {
	stop := NewStopFlag()
	cancel := NotifyOnSignals(stop, syscall.SIGUSR1)
	cancel()
	assert.False(t, stop.Stopped())
}
