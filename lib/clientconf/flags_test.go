package clientconf

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func TestRegister(t *testing.T) {
	var flags Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.Register(fs)

	err := fs.Parse([]string{"-u", "testuser", "-h", "db1", "-p", "3307"})
	if err != nil {
		t.Fatal(err)
	}

	if flags.User != "testuser" || flags.Host != "db1" || flags.Port != "3307" {
		t.Errorf("unexpected flags: %+v", flags)
	}
}

func TestGenerateConfig(t *testing.T) {
	flags := Flags{
		User:  "testuser",
		Files: []string{`./testcnf/my.cnf`, `./testcnf/broken.cnf`},
	}

	config, err := flags.GenerateConfig(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if config.FormatDSN() != `testuser@unix(/var/lib/mysql/mysql.sock)/` {
		t.Errorf(`Unexpected dsn: %s`, config.FormatDSN())
	}
}

func TestPromptPassword(t *testing.T) {
	config := mysql.NewConfig()
	var out bytes.Buffer

	err := PromptPassword(config, &out, func() ([]byte, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if config.Passwd != "secret" {
		t.Errorf("unexpected password: %s", config.Passwd)
	}
	if out.String() != "Enter password: \n" {
		t.Errorf("unexpected prompt: %q", out.String())
	}
}

func TestPromptPasswordFromCnf(t *testing.T) {
	config := mysql.NewConfig()
	config.Passwd = "from cnf"

	err := PromptPassword(config, &bytes.Buffer{}, func() ([]byte, error) {
		t.Fatal("prompted even though a password was configured")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPromptPasswordError(t *testing.T) {
	config := mysql.NewConfig()
	readErr := errors.New("not a terminal")

	err := PromptPassword(config, &bytes.Buffer{}, func() ([]byte, error) {
		return nil, readErr
	})
	if !errors.Is(err, readErr) {
		t.Errorf("unexpected error: %v", err)
	}
}
