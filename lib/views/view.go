package views

import (
	"fmt"
	"strings"

	"github.com/jayjanssen/myq-mon/lib/dbconn"
)

// Column is one labeled field of a row
type Column struct {
	Label  string `yaml:"label"`
	Field  int    `yaml:"field"`
	X      int    `yaml:"x"`
	Format string `yaml:"format"`
}

// Value formats the column's field of row. NULL shows as "-".
func (c Column) Value(row dbconn.Row) string {
	if row.IsNull(c.Field) {
		return "-"
	}
	val := row.Str(c.Field)

	switch c.Format {
	case "yesno":
		if val == "1" {
			return "Y"
		}
		return "N"
	}
	return val
}

// Detail is a free text field printed on its own line under a row, skipped
// when NULL.
type Detail struct {
	Field int    `yaml:"field"`
	Color string `yaml:"color"`
	Bold  bool   `yaml:"bold"`
}

// View is the query and layout of one mode of one tool
type View struct {
	Tool  string `yaml:"tool"`
	Mode  Mode   `yaml:"mode"`
	Title string `yaml:"title"`
	Query string `yaml:"query"`

	// Server major version range, 0 is unbounded
	MinMajor int `yaml:"min_major"`
	MaxMajor int `yaml:"max_major"`

	RequiresInstrumentation bool `yaml:"requires_instrumentation"`

	Heading []Column `yaml:"heading"`
	Columns []Column `yaml:"columns"`
	Details []Detail `yaml:"details"`

	// Fields written to the transaction log, in order
	Log []Column `yaml:"log"`
}

// Matches reports whether the view applies to a server of this major version
func (v *View) Matches(major int) bool {
	if v.MinMajor != 0 && major < v.MinMajor {
		return false
	}
	if v.MaxMajor != 0 && major > v.MaxMajor {
		return false
	}
	return true
}

// LogHeader is the log column labels joined by sep
func (v *View) LogHeader(sep string) string {
	labels := make([]string, len(v.Log))
	for i, col := range v.Log {
		labels[i] = col.Label
	}
	return strings.Join(labels, sep)
}

var colors = map[string]bool{"": true, "green": true, "magenta": true, "cyan": true, "red": true, "blue": true}

func (v *View) validate() error {
	if v.Tool == "" || v.Query == "" {
		return fmt.Errorf("view %q: tool and query are required", v.Title)
	}
	for _, d := range v.Details {
		if !colors[d.Color] {
			return fmt.Errorf("view %q: unknown color %q", v.Title, d.Color)
		}
	}
	cols := append([]Column{}, v.Heading...)
	cols = append(cols, v.Columns...)
	cols = append(cols, v.Log...)
	for _, c := range cols {
		if c.Format != "" && c.Format != "yesno" {
			return fmt.Errorf("view %q: unknown format %q", v.Title, c.Format)
		}
	}
	return nil
}
