// Package session connects a tool to its server: connection settings,
// password prompt, connect, capability probe.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jayjanssen/myq-mon/lib/clientconf"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/probe"
	"go.uber.org/zap"
)

// ConnectTimeout bounds connecting and the first ping
const ConnectTimeout = 10 * time.Second

// Connect resolves the connection settings, prompts for the password on out
// when none is configured, and connects.
func Connect(ctx context.Context, flags *clientconf.Flags, out io.Writer, read clientconf.PasswordReader, logger *zap.Logger) (*dbconn.DB, *mysql.Config, error) {
	config, err := flags.GenerateConfig(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connection settings: %w", err)
	}
	if err := clientconf.PromptPassword(config, out, read); err != nil {
		return nil, nil, err
	}

	logger.Debug("connecting", zap.String("user", config.User), zap.String("net", config.Net), zap.String("addr", config.Addr))
	db, err := dbconn.Open(ctx, config, ConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to MySQL server: %w", err)
	}
	return db, config, nil
}

// Probe detects the server capabilities and, when mysqlOnly, rejects MariaDB
func Probe(ctx context.Context, q dbconn.Querier, mysqlOnly bool, logger *zap.Logger) (*probe.ServerProfile, error) {
	profile, err := probe.NewProber(q, probe.DefaultWidths).Probe(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("server probed",
		zap.Stringer("vendor", profile.Vendor),
		zap.String("version", profile.Version),
		zap.Int("major", profile.VersionMajor),
		zap.String("host", profile.DisplayName()),
		zap.Bool("performance_schema", profile.PerformanceSchema),
	)

	if mysqlOnly {
		if err := probe.RequireMySQLFamily(profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}
