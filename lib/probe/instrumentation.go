package probe

import (
	"context"
	"strings"

	"github.com/jayjanssen/myq-mon/lib/dbconn"
)

const (
	mdlInstrumentQuery  = `SELECT ENABLED FROM performance_schema.setup_instruments WHERE NAME = 'wait/lock/metadata/sql/mdl'`
	mdlInstrumentEnable = `UPDATE performance_schema.setup_instruments SET ENABLED = 'YES' WHERE NAME = 'wait/lock/metadata/sql/mdl'`
)

// CheckMetadataLockInstrumentation reads the mdl instrument and latches the
// profile flag when it is enabled. It never clears the flag.
func CheckMetadataLockInstrumentation(ctx context.Context, q dbconn.Querier, profile *ServerProfile) (bool, error) {
	if profile.MetadataLockInstrumentation() {
		return true, nil
	}

	enabled, _, err := dbconn.Value(ctx, q, mdlInstrumentQuery)
	if err != nil {
		return false, err
	}
	if strings.EqualFold(enabled, "YES") {
		profile.EnableMetadataLockInstrumentation()
		return true, nil
	}
	return false, nil
}

// EnableMetadataLockInstrumentation asks the server to turn the mdl
// instrument on. It needs UPDATE on performance_schema.setup_instruments.
func EnableMetadataLockInstrumentation(ctx context.Context, q dbconn.Querier) error {
	return q.Exec(ctx, mdlInstrumentEnable)
}
