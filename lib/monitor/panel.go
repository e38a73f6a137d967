package monitor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jayjanssen/myq-mon/lib/counter"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
)

// MetricKind says how a status value is shown
type MetricKind int

const (
	// Gauge values are shown as read
	Gauge MetricKind = iota
	// Counter values are cumulative, shown as the change over the interval
	Counter
	// Setting values come from SHOW GLOBAL VARIABLES
	Setting
)

// StatusMetric is one line of the status panel
type StatusMetric struct {
	Label string
	Name  string
	Kind  MetricKind
	// blank line before this one
	Gap bool
}

// SysMetric is a scalar read from the sys schema
type SysMetric struct {
	Label  string
	Query  string
	Suffix string
}

// Panel is the scalar section every cycle shows above the view
type Panel struct {
	Status []StatusMetric
	Sys    []SysMetric
}

const (
	statusQuery    = `SHOW GLOBAL STATUS`
	variablesQuery = `SHOW GLOBAL VARIABLES`
)

// StatusValue is a formatted panel line
type StatusValue struct {
	Label string
	Value string
	Gap   bool
}

func (p Panel) hasSettings() bool {
	for _, m := range p.Status {
		if m.Kind == Setting {
			return true
		}
	}
	return false
}

// read fetches the status (and variables when needed) maps
func (p Panel) read(ctx context.Context, q dbconn.Querier) (status, vars map[string]string, err error) {
	if len(p.Status) == 0 {
		return nil, nil, nil
	}
	status, err = dbconn.NameValues(ctx, q, statusQuery)
	if err != nil {
		return nil, nil, err
	}
	if p.hasSettings() {
		vars, err = dbconn.NameValues(ctx, q, variablesQuery)
		if err != nil {
			return nil, nil, err
		}
	}
	return status, vars, nil
}

// seed stores the counter baselines
func (p Panel) seed(status map[string]string, differ *counter.Differ) {
	for _, m := range p.Status {
		if m.Kind != Counter {
			continue
		}
		if n, err := strconv.ParseInt(status[m.Name], 10, 64); err == nil {
			differ.Seed(m.Name, n)
		}
	}
}

// values formats every status line, counters go through differ
func (p Panel) values(status, vars map[string]string, differ *counter.Differ) []StatusValue {
	out := make([]StatusValue, 0, len(p.Status))
	for _, m := range p.Status {
		raw, ok := status[m.Name]
		if m.Kind == Setting {
			raw, ok = vars[m.Name]
		}

		val := "-"
		if ok {
			val = formatNumber(raw)
			if m.Kind == Counter {
				if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
					val = humanize.Comma(differ.Sample(m.Name, n))
				}
			}
		}
		out = append(out, StatusValue{Label: m.Label, Value: val, Gap: m.Gap})
	}
	return out
}

func formatNumber(raw string) string {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return humanize.Comma(n)
	}
	return raw
}

// sysValues reads the sys scalars. Lines the account may not read are left out.
func (p Panel) sysValues(ctx context.Context, q dbconn.Querier) ([]StatusValue, error) {
	var out []StatusValue
	for i, m := range p.Sys {
		val, ok, err := dbconn.Value(ctx, q, m.Query)
		if dbconn.IsPrivilegeDenied(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			val = "-"
		}
		out = append(out, StatusValue{Label: m.Label, Value: fmt.Sprintf("%s%s", val, m.Suffix), Gap: i == 0})
	}
	return out, nil
}
