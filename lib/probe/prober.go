package probe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
)

// Probe queries
const (
	versionQuery           = `SELECT @@version`
	hostnameQuery          = `SELECT @@hostname`
	auroraVersionQuery     = `SHOW VARIABLES WHERE Variable_name = 'aurora_version'`
	auroraServerIDQuery    = `SELECT @@aurora_server_id`
	performanceSchemaQuery = `SELECT @@performance_schema`
)

// ProbeError means the server could not be classified
type ProbeError struct {
	Step string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probing %s: %v", e.Step, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// UnsupportedServerError rejects a vendor a tool cannot monitor
type UnsupportedServerError struct {
	Vendor  Vendor
	Version string
}

func (e *UnsupportedServerError) Error() string {
	return fmt.Sprintf("%s is not supported (%s): sys schema and InnoDB lock introspection are MySQL only", e.Vendor, e.Version)
}

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+)*`)

// Prober fills a ServerProfile from a connection
type Prober struct {
	q       dbconn.Querier
	widths  Widths
	profile *ServerProfile
}

// NewProber starts an empty profile, text fields are cut to widths
func NewProber(q dbconn.Querier, widths Widths) *Prober {
	return &Prober{
		q:       q,
		widths:  widths,
		profile: &ServerProfile{},
	}
}

// Profile is the profile built so far
func (p *Prober) Profile() *ServerProfile {
	return p.profile
}

// Probe runs every detection in order
func (p *Prober) Probe(ctx context.Context) (*ServerProfile, error) {
	steps := []func(context.Context) error{
		p.DetectVendorAndVersion,
		p.DetectHostname,
		p.DetectAuroraIdentity,
		p.DetectPerformanceSchema,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	return p.profile, nil
}

// DetectVendorAndVersion reads @@version: vendor from the MariaDB marker,
// major version from the leading numeric token.
func (p *Prober) DetectVendorAndVersion(ctx context.Context) error {
	raw, ok, err := dbconn.Value(ctx, p.q, versionQuery)
	if err != nil {
		return &ProbeError{Step: "version", Err: err}
	}
	if !ok {
		return &ProbeError{Step: "version", Err: fmt.Errorf("empty result")}
	}

	major, err := majorVersion(raw)
	if err != nil {
		return &ProbeError{Step: "version", Err: err}
	}

	p.profile.VersionMajor = major
	p.profile.Version = Truncate(raw, p.widths.Version)
	if strings.Contains(raw, "MariaDB") {
		p.profile.Vendor = MariaDB
	} else {
		p.profile.Vendor = MySQL
	}
	return nil
}

func majorVersion(raw string) (int, error) {
	token := leadingVersion.FindString(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("no version number in %q", raw)
	}
	v, err := version.NewVersion(token)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", raw, err)
	}
	return v.Segments()[0], nil
}

// DetectHostname reads the server hostname for display
func (p *Prober) DetectHostname(ctx context.Context) error {
	host, _, err := dbconn.Value(ctx, p.q, hostnameQuery)
	if err != nil {
		return &ProbeError{Step: "hostname", Err: err}
	}
	p.profile.Hostname = Truncate(host, p.widths.Hostname)
	return nil
}

// DetectAuroraIdentity switches the vendor to Aurora when aurora_version
// exists, and captures the Aurora version and server id.
func (p *Prober) DetectAuroraIdentity(ctx context.Context) error {
	auroraVersion, ok, err := dbconn.VariableValue(ctx, p.q, auroraVersionQuery)
	if err != nil {
		return &ProbeError{Step: "aurora version", Err: err}
	}
	if !ok {
		return nil
	}

	serverID, _, err := dbconn.Value(ctx, p.q, auroraServerIDQuery)
	if err != nil {
		return &ProbeError{Step: "aurora server id", Err: err}
	}

	p.profile.Vendor = Aurora
	p.profile.AuroraVersion = Truncate(auroraVersion, p.widths.AuroraVersion)
	p.profile.AuroraServerID = Truncate(serverID, p.widths.AuroraServerID)
	return nil
}

// DetectPerformanceSchema reads the performance_schema switch
func (p *Prober) DetectPerformanceSchema(ctx context.Context) error {
	val, _, err := dbconn.Value(ctx, p.q, performanceSchemaQuery)
	if err != nil {
		return &ProbeError{Step: "performance_schema", Err: err}
	}
	p.profile.PerformanceSchema = val == "1"
	return nil
}

// RequireMySQLFamily rejects MariaDB for tools built on sys and
// performance_schema InnoDB introspection.
func RequireMySQLFamily(profile *ServerProfile) error {
	if profile.Vendor == MariaDB {
		return &UnsupportedServerError{Vendor: profile.Vendor, Version: profile.Version}
	}
	return nil
}
