package clientconf

import (
	"flag"
	"fmt"
	"io"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Connection defaults used when neither a cnf file nor a flag names them
const (
	DefaultHost = `localhost`
	DefaultPort = `3306`
)

// Flags are the connection settings a tool accepts on its command line.
// Empty fields leave the cnf file value (or the default) in place.
type Flags struct {
	User    string
	Host    string
	Port    string
	Socket  string
	SSLCert string
	SSLKey  string
	SSLCa   string

	// cnf files to read, getCnfFiles() when nil
	Files []string
}

// Register binds the connection flags to fs
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.User, "u", "", "MySQL user (required)")
	fs.StringVar(&f.Host, "h", "", fmt.Sprintf("MySQL host (default %q)", DefaultHost))
	fs.StringVar(&f.Port, "p", "", fmt.Sprintf("MySQL port (default %s)", DefaultPort))
	fs.StringVar(&f.Socket, "socket", "", "MySQL socket file")
	fs.StringVar(&f.SSLCa, "ssl-ca", "", "SSL CA file")
	fs.StringVar(&f.SSLCert, "ssl-cert", "", "SSL certificate file")
	fs.StringVar(&f.SSLKey, "ssl-key", "", "SSL key file")
}

// GenerateConfig resolves defaults, cnf files and flags (in that order) into a
// mysql.Config. cnf files that cannot be parsed are logged and skipped.
func (f *Flags) GenerateConfig(logger *zap.Logger) (*mysql.Config, error) {
	files := f.Files
	if files == nil {
		files = getCnfFiles()
	}

	cnf := initCnf()
	if err := appendFiles(cnf, files); err != nil {
		logger.Warn("skipped unreadable cnf files", zap.Error(err))
	}
	f.applyFlags(cnf)

	return cnfToConfig(cnf)
}

// PasswordReader reads a password without echoing it
type PasswordReader func() ([]byte, error)

// TerminalPassword reads from the terminal behind fd with echo disabled
func TerminalPassword(fd int) PasswordReader {
	return func() ([]byte, error) {
		return term.ReadPassword(fd)
	}
}

// PromptPassword asks for the password unless a cnf file already supplied one
func PromptPassword(config *mysql.Config, out io.Writer, read PasswordReader) error {
	if config.Passwd != "" {
		return nil
	}

	fmt.Fprint(out, "Enter password: ")
	pass, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	config.Passwd = string(pass)
	return nil
}
