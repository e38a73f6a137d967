// Package probe classifies the connected server once at startup: vendor,
// version tier and the optional subsystems the monitors depend on.
package probe

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Vendor of the connected server
type Vendor int

const (
	MySQL Vendor = iota
	MariaDB
	Aurora
)

func (v Vendor) String() string {
	switch v {
	case MariaDB:
		return "MariaDB"
	case Aurora:
		return "Aurora"
	default:
		return "MySQL"
	}
}

// ServerProfile holds what the prober learned about the server. Everything
// but the metadata lock instrumentation flag is fixed after Probe.
type ServerProfile struct {
	Vendor         Vendor
	VersionMajor   int
	Version        string
	Hostname       string
	AuroraVersion  string
	AuroraServerID string

	PerformanceSchema bool

	mdlInstrumentation bool
}

// V8OrLater is true for 8.0 and later servers
func (p *ServerProfile) V8OrLater() bool {
	return p.VersionMajor >= 8
}

// MetadataLockInstrumentation reports whether wait/lock/metadata/sql/mdl is enabled
func (p *ServerProfile) MetadataLockInstrumentation() bool {
	return p.mdlInstrumentation
}

// EnableMetadataLockInstrumentation records that the instrument was seen
// enabled. There is no way back to false.
func (p *ServerProfile) EnableMetadataLockInstrumentation() {
	p.mdlInstrumentation = true
}

// DisplayName is the Aurora server id on Aurora, the hostname elsewhere
func (p *ServerProfile) DisplayName() string {
	if p.Vendor == Aurora && p.AuroraServerID != "" {
		return p.AuroraServerID
	}
	return p.Hostname
}

// DisplayVersion is the version line shown under the display name
func (p *ServerProfile) DisplayVersion() string {
	if p.Vendor == Aurora && p.AuroraVersion != "" {
		return fmt.Sprintf("%s (Aurora %s)", p.Version, p.AuroraVersion)
	}
	return p.Version
}

// Widths bound the display width of the text fields of a ServerProfile
type Widths struct {
	Version        int
	Hostname       int
	AuroraVersion  int
	AuroraServerID int
}

// DefaultWidths fit the header of an 80 column screen
var DefaultWidths = Widths{
	Version:        24,
	Hostname:       48,
	AuroraVersion:  16,
	AuroraServerID: 48,
}

// Truncate cuts s to at most max display columns. Wide characters are never
// split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "")
}
