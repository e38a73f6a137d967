package dbconn

import (
	"errors"

	my "github.com/go-mysql/errors"
	"github.com/go-sql-driver/mysql"
)

// MySQL server error codes for a missing privilege
const (
	erDBAccessDenied       = 1044 // ER_DBACCESS_DENIED_ERROR
	erAccessDenied         = 1045 // ER_ACCESS_DENIED_ERROR
	erTableAccessDenied    = 1142 // ER_TABLEACCESS_DENIED_ERROR
	erColumnAccessDenied   = 1143 // ER_COLUMNACCESS_DENIED_ERROR
	erSpecificAccessDenied = 1227 // ER_SPECIFIC_ACCESS_DENIED_ERROR
	erProcAccessDenied     = 1370 // ER_PROCACCESS_DENIED_ERROR
)

// ErrPrivilegeDenied marks a query the account is not allowed to run
var ErrPrivilegeDenied = errors.New("privilege denied")

// causes walks the wrap chain, my.* helpers only look at the concrete error
func causes(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}

// IsPrivilegeDenied reports whether err is a server access denied error
func IsPrivilegeDenied(err error) bool {
	if errors.Is(err, ErrPrivilegeDenied) {
		return true
	}
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	switch my.MySQLErrorCode(myErr) {
	case erDBAccessDenied, erAccessDenied, erTableAccessDenied,
		erColumnAccessDenied, erSpecificAccessDenied, erProcAccessDenied:
		return true
	}
	return false
}

// connState is my.ErrConnLost or my.ErrCannotConnect when some cause in err
// is one of them, else nil.
func connState(err error) error {
	for _, cause := range causes(err) {
		if _, myErr := my.Error(cause); myErr == my.ErrConnLost || myErr == my.ErrCannotConnect {
			return myErr
		}
	}
	return nil
}

// IsConnectionLost reports whether err means the server can no longer be
// reached on this connection.
func IsConnectionLost(err error) bool {
	return connState(err) != nil
}

// IsCannotConnect reports whether err means no connection could be made at
// all, as opposed to an established one going away.
func IsCannotConnect(err error) bool {
	return connState(err) == my.ErrCannotConnect
}

// ErrorCode is the MySQL server error number in err, 0 for other errors
func ErrorCode(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return my.MySQLErrorCode(myErr)
	}
	return 0
}
